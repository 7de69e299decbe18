package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"wootsync/lib/client"
	"wootsync/lib/configutil"
)

func init() {
	rootCmd.AddCommand(todayCmd)
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Queries the sync API for every shop's current sale.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[client.Config]("config.json5")
		if err != nil {
			fatal("failed to read config", err)
		}

		today, err := client.New(cfg).Today(cmd.Context())
		if err != nil {
			fatal("failed to query current sales", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Shop", "Status", "Price", "Name"})
		for shop, record := range today {
			product, _ := record["product"].(map[string]any)
			name, _ := product["name"].(string)
			t.AppendRow(table.Row{shop, record["status"], record["price"], name})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
