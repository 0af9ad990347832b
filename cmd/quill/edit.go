package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/viewstate"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a note",
	Long:  `Load a note, apply the given flags and save it. Unset flags keep their value.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx := context.Background()

		repo := openRepo()
		defer repo.Close()

		editor := quill.NewEditor(repo, viewstate.WithLogger(slog.Default()))
		defer editor.Close()

		if n, err := repo.First(ctx, id); err != nil {
			fatal("loading note", err)
		} else if n == nil {
			fatal("loading note", fmt.Errorf("note %s not found", id))
		}
		if err := editor.EnterExisting(ctx, id); err != nil {
			fatal("loading note", err)
		}
		if err := applyEdits(cmd, editor); err != nil {
			fatal("editing note", err)
		}

		if _, err := editor.Save(ctx); err != nil {
			fatal("saving note", err)
		}
		fmt.Printf("Note %s saved.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	addEditFlags(editCmd)
}
