package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/carepath"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of carepath",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "carepath version %s\n", strings.TrimSpace(carepath.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
