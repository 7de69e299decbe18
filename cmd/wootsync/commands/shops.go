package commands

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(shopsCmd)
}

var shopsCmd = &cobra.Command{
	Use:   "shops",
	Short: "Prints the configured shop directory.",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registry()
		if err != nil {
			fatal("failed to load shop settings", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Host", "Source", "Epoch", "Statuses"})
		for _, shop := range reg.All() {
			t.AppendRow(table.Row{
				shop.Name,
				shop.Host,
				shop.Source.Format,
				shop.Epoch,
				strings.Join(shop.Statuses, ", "),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
