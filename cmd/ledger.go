package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ppartarr/mp3renamer/entity/ledger"
	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdLedger())
}

func cmdLedger() *cobra.Command {
	return &cobra.Command{
		Use:          "ledger",
		Short:        "List the files processed so far",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, err := ledger.Load(settings.Ledger)
			if err != nil {
				return err
			}
			if index.Size() == 0 {
				tui.Printf("no file processed yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLedger(index))
			return nil
		},
	}
}

func renderLedger(index *ledger.Ledger) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Original", "Current", "Artist", "Album", "Year", "Processed"})
	for _, name := range index.Names() {
		entry, _ := index.Get(name)
		seconds := int64(entry.Timestamp)
		nanoseconds := int64((entry.Timestamp - float64(seconds)) * float64(time.Second))
		tw.AppendRow(table.Row{
			name,
			entry.NewPath,
			entry.Artist,
			entry.Album,
			entry.Year,
			time.Unix(seconds, nanoseconds).Format(time.DateTime),
		})
	}
	tw.AppendFooter(table.Row{strconv.Itoa(index.Size()) + " files"})
	return tw.Render()
}
