package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "registry",
		Short: "Wedding gift registry API and CMS tooling",
		Long: `registry serves the wedding gift registry API and the CMS session
endpoints, and provides the maintenance commands used to provision CMS
accounts and seed the gift catalogue.

Configuration is read from the environment, optionally via .env.local or .env.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		createUserCmd(),
		seedGiftsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
