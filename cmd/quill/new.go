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

var (
	noteTitle   string
	noteBody    string
	noteColor   string
	noteBullets []string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note",
	Long: `Create a note from flags. A blank title is saved as "Untitled".
Each --bullet appends one bullet line to the body.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		defer repo.Close()

		editor := quill.NewEditor(repo, viewstate.WithLogger(slog.Default()))
		defer editor.Close()

		editor.EnterNew()
		if err := applyEdits(cmd, editor); err != nil {
			fatal("editing note", err)
		}

		id, err := editor.Save(context.Background())
		if err != nil {
			fatal("saving note", err)
		}
		fmt.Printf("Note %s created.\n", id)
	},
}

// applyEdits pushes the flags that were set into the editor buffer.
func applyEdits(cmd *cobra.Command, editor *viewstate.Editor) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		editor.SetTitle(noteTitle)
	}
	if flags.Changed("body") {
		editor.SetBody(noteBody)
	}
	if flags.Changed("color") {
		c, err := core.ParseColor(noteColor)
		if err != nil {
			return err
		}
		editor.SetColor(c)
	}
	for _, text := range noteBullets {
		editor.AppendBullet()
		editor.SetBody(editor.Draft().Body + text)
	}
	return nil
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&noteBody, "body", "b", "", "Note body (replaces the current body)")
	cmd.Flags().StringVarP(&noteColor, "color", "c", "", "Colour key or name (see 'quill colors')")
	cmd.Flags().StringArrayVar(&noteBullets, "bullet", nil, "Append a bullet line (repeatable)")
}

func init() {
	rootCmd.AddCommand(newCmd)
	addEditFlags(newCmd)
}
