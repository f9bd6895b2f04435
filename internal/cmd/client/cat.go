package client

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewCatCommand constructs the `cat` command: a one-shot dump of stored
// entries from the head or a saved cursor.
func NewCatCommand(baseURL BaseURLFunc) *cobra.Command {
	catCmd := &cobra.Command{
		Use:   "cat",
		Short: "Print stored entries and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cursor, _ := cmd.Flags().GetString("cursor")
			match, _ := cmd.Flags().GetString("match")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			resp, err := fetchEntries(baseURL(), cursor, match, limit, false)
			if err != nil {
				return err
			}
			page, err := decodePage(resp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				for _, it := range page.Entries {
					_ = enc.Encode(it)
				}
				return nil
			}
			for _, it := range page.Entries {
				printEntry(out, it)
			}
			return nil
		},
	}
	catCmd.Flags().String("cursor", "", "Start after this saved cursor instead of the head")
	catCmd.Flags().String("match", "", "CEL match expression, e.g. 'priority <= 3'")
	catCmd.Flags().Int("limit", 100, "Maximum entries to print")
	catCmd.Flags().Bool("json", false, "Print raw JSON entries")
	return catCmd
}

func printEntry(out io.Writer, it entryItem) {
	ts := time.UnixMicro(int64(it.RealtimeUs)).Format(time.RFC3339)
	msg := it.Fields["MESSAGE"]
	if pri, ok := it.Fields["PRIORITY"]; ok {
		fmt.Fprintf(out, "%s [%s] %s\n", ts, pri, msg)
		return
	}
	fmt.Fprintf(out, "%s %s\n", ts, msg)
}
