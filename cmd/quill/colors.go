package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
)

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "List the note palette",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range quill.Palette() {
			fmt.Printf("%-10s  %-9s  %s\n", c.Key(), c.Name(), c.Hex())
		}
	},
}

func init() {
	rootCmd.AddCommand(colorsCmd)
}
