package commands

// History command
// Prints saved mint batches from data_out/mint_history.json

import (
	"fmt"
	"time"

	"sonic-minter/internal/infra/fs"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved mint batches",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	records, err := fs.LoadBatchRecords()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No mint history yet")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s  %s  %s  %d/%d succeeded\n",
			rec.Timestamp.Format(time.RFC3339), rec.Network, rec.Wallet, rec.Succeeded, rec.Requested)
		for _, a := range rec.Attempts {
			if a.Error != "" {
				fmt.Fprintf(out, "  #%d failed: %s\n", a.Index, a.Error)
			} else {
				fmt.Fprintf(out, "  #%d %s\n", a.Index, a.Signature)
			}
		}
	}
	return nil
}
