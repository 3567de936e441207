package cmd

import (
	"fmt"
	"time"

	"github.com/ppartarr/mp3renamer/config"
	"github.com/ppartarr/mp3renamer/discogs"
	"github.com/ppartarr/mp3renamer/entity/ledger"
	"github.com/ppartarr/mp3renamer/matcher"
	"github.com/ppartarr/mp3renamer/prompt"
	"github.com/ppartarr/mp3renamer/renamer"
	"github.com/spf13/cobra"
)

func runRename(cmd *cobra.Command, _ []string) error {
	token, err := config.Token()
	if err != nil {
		return err
	}

	index, err := ledger.Load(settings.Ledger)
	if err != nil {
		return err
	}
	if err := index.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := index.Unlock(); err != nil {
			tui.Warnf("failed to release ledger lock: %s", err)
		}
	}()
	tui.Debugf("%d files in ledger %s", index.Size(), index.Path())

	client := discogs.New(token,
		discogs.WithEndpoint(settings.Endpoint),
		discogs.WithUserAgent(settings.UserAgent),
		discogs.WithLimiter(discogs.NewLimiter(settings.RequestsPerMinute, time.Minute)),
		discogs.WithLogger(tui),
	)
	batch := renamer.New(client, matcher.New(settings.Threshold), prompt.NewTerminal(tui), index, tui)

	lot := tui.Lot("rename")
	lot.Printf("processing %s", settings.Library)
	summary, err := batch.Run(cmd.Context(), settings.Library)
	if err != nil {
		lot.Wipe()
		if len(summary.Reports) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), summary.Render())
		}
		return err
	}
	lot.Close(
		fmt.Sprintf("%d renamed", summary.Count(renamer.OutcomeRenamed)),
		fmt.Sprintf("%d kept", summary.Count(renamer.OutcomeKept)),
		fmt.Sprintf("%d skipped", summary.Count(renamer.OutcomeSkipped)),
		fmt.Sprintf("%d failed", summary.Count(renamer.OutcomeFailed)),
	)
	if len(summary.Reports) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), summary.Render())
	}
	return nil
}
