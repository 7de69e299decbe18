package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"wootsync/lib/parser"
)

var withStats *bool

func init() {
	withStats = saleCmd.Flags().Bool("stats", false, "Fetch sale statistics even when the sale is still active.")
	rootCmd.AddCommand(saleCmd)
}

var saleCmd = &cobra.Command{
	Use:   "sale <shop|forum url> [--stats]",
	Short: "Fetches and prints the current sale of a shop, or the sale behind a forum url.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registry()
		if err != nil {
			fatal("failed to load shop settings", err)
		}

		p := parser.New(reg, parser.Options{})
		s, err := p.ResolveSale(cmd.Context(), args[0], *withStats)
		if err != nil {
			fatal("failed to resolve sale", err)
		}
		slog.Info("resolved sale", "shop", s.Shop().Name, "status", s.Status())

		out, err := json.MarshalIndent(s.Attributes(), "", "  ")
		if err != nil {
			fatal("failed to encode sale", err)
		}
		fmt.Println(string(out))
	},
}
