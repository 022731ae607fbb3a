package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c9s/pythia/pkg/version"
)

func init() {
	RootCmd.AddCommand(VersionCmd)
}

var VersionCmd = &cobra.Command{
	Use:          "version",
	Short:        "show version name",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.AppName, version.Version)
	},
}
