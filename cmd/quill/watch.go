package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the note list every time it changes",
	Long: `Print the note list, then again after every change, until interrupted.
With the fs adapter, edits made to the files by hand are picked up too.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo(quill.WithWatch(true))
		defer repo.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stream, err := quill.NewList(repo).Notes(ctx)
		if err != nil {
			fatal("watching notes", err)
		}

		for notes := range stream {
			fmt.Printf("--- %s (%d notes)\n", time.Now().Format(time.TimeOnly), len(notes))
			if err := printNotes(os.Stdout, notes, false); err != nil {
				fatal("printing notes", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
