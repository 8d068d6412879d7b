package main

import (
	"os"

	"github.com/recaptools/recap/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(cli.NewConvertCmd())
	rootCmd.AddCommand(cli.NewListCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
