package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wootsync/lib/shops"
)

var settingsPath *string

var rootCmd = &cobra.Command{
	Use:   "wootsync",
	Short: "wootsync scrapes deal-a-day shops into normalized sale records.",
}

func init() {
	settingsPath = rootCmd.PersistentFlags().String("settings", "", "Path to a shop settings file. The embedded directory is used when empty.")
}

func registry() (*shops.Registry, error) {
	if *settingsPath != "" {
		return shops.Load(*settingsPath)
	}
	return shops.Default()
}

func fatal(message string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
	os.Exit(1)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
