// Package commands implements the nfsd CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nfsd",
	Short: "nfsd - userspace NFSv3 server",
	Long: `nfsd is a userspace NFS version 3 server. It serves a local directory
tree over a single TCP endpoint on which the portmapper, MOUNT, and NFS
programs are multiplexed, so a stock Linux client can mount it without a
system rpcbind.

Use "nfsd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
