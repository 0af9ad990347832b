package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill/pkg/core"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		repo := openRepo()
		defer repo.Close()

		n, err := repo.First(context.Background(), id)
		if err != nil {
			fatal("reading note", err)
		}
		if n == nil {
			fatal("reading note", fmt.Errorf("note %s not found", id))
		}
		printNote(*n)
	},
}

func printNote(n core.Note) {
	fmt.Printf("# %s\n", n.Title)
	fmt.Printf("id: %s  color: %s (%s)\n\n", n.ID, n.Color.Key(), n.Color.Hex())
	fmt.Println(n.Body)
}

func init() {
	rootCmd.AddCommand(showCmd)
}
