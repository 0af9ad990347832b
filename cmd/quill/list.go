package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		defer repo.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stream, err := quill.NewList(repo).Notes(ctx)
		if err != nil {
			fatal("listing notes", err)
		}
		notes, ok := <-stream
		if !ok {
			fatal("listing notes", fmt.Errorf("stream closed"))
		}

		if err := printNotes(os.Stdout, notes, listJSON); err != nil {
			fatal("printing notes", err)
		}
	},
}

// noteView is the JSON shape of a note.
type noteView struct {
	ID    core.ID `json:"id"`
	Title string  `json:"title"`
	Body  string  `json:"body"`
	Color string  `json:"color"`
	Hex   string  `json:"hex"`
}

func printNotes(w io.Writer, notes []core.Note, asJSON bool) error {
	if asJSON {
		views := make([]noteView, len(notes))
		for i, n := range notes {
			views[i] = noteView{ID: n.ID, Title: n.Title, Body: n.Body, Color: n.Color.Key(), Hex: n.Color.Hex()}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	}

	for _, n := range notes {
		firstLine, _, _ := strings.Cut(n.Body, "\n")
		if _, err := fmt.Fprintf(w, "%4s  %-10s  %s  %s\n", n.ID, n.Color.Key(), n.Title, firstLine); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
