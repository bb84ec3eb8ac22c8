package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of graphrag",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("graphrag %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
