package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"wootsync/lib/parser"
)

var indexPage *int

func init() {
	indexPage = indexCmd.Flags().Int("page", 1, "The forum listing page to fetch.")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index <shop> [--page <n>]",
	Short: "Lists past sales from a shop's forum index.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registry()
		if err != nil {
			fatal("failed to load shop settings", err)
		}
		shop, err := reg.Fetch(args[0])
		if err != nil {
			fatal("unknown shop", err)
		}

		p := parser.New(reg, parser.Options{})
		sales, err := p.FetchIndex(cmd.Context(), shop, *indexPage)
		if err != nil {
			fatal("failed to fetch forum index", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Name", "Start", "Forum"})
		for i, s := range sales {
			start := ""
			if at, ok := s.Get("start").(time.Time); ok {
				start = at.Format("2006-01-02")
			}
			t.AppendRow(table.Row{i + 1, s.Name(), start, s.ForumURL()})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		fmt.Printf("%d sales on page %d of %s\n", len(sales), *indexPage, shop.Title())
	},
}
