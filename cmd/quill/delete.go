package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/viewstate"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Long:  `Delete a note. Deleting a note that does not exist is not an error.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		repo := openRepo()
		defer repo.Close()

		var failed error
		list := quill.NewList(repo,
			viewstate.WithLogger(slog.Default()),
			viewstate.WithErrorHandler(func(err error) { failed = err }),
		)
		list.DeleteNote(context.Background(), core.Note{ID: id})
		list.Wait()

		if failed != nil {
			fatal("deleting note", failed)
		}
		fmt.Printf("Note %s deleted.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
