package commands

import (
	"github.com/spf13/cobra"

	"confpub/pkg/version"
)

var shortVersion bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version information for confpub including build details
such as Git commit, build date, Go version, and platform.`,
	Example: `  confpub version         # Show full version information
  confpub version --short # Show only version number`,
	RunE: runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	buildInfo := version.Get()

	if shortVersion {
		cmd.Println(buildInfo.Version)
	} else {
		cmd.Println(buildInfo.String())
	}

	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&shortVersion, "short", false, "show only version number")
}
