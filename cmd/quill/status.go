package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the resolved configuration and store state as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openRepo()
		defer repo.Close()

		out := struct {
			Config any `json:"config"`
			Store  any `json:"store"`
		}{
			Config: cfg,
			Store:  repo.State(),
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fatal("encoding status", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
