package client

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewTailCommand constructs the `tail` command: follow the store live over
// SSE, optionally resuming from and persisting a cursor file so a restarted
// tail picks up where it left off.
func NewTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow new entries as they arrive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			match, _ := cmd.Flags().GetString("match")
			cursorFile, _ := cmd.Flags().GetString("cursor-file")
			asJSON, _ := cmd.Flags().GetBool("json")

			var cursor string
			if cursorFile != "" {
				if b, err := os.ReadFile(cursorFile); err == nil {
					cursor = strings.TrimSpace(string(b))
				}
			}

			resp, err := fetchEntries(baseURL(), cursor, match, 0, true)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			sc := bufio.NewScanner(resp.Body)
			sc.Buffer(make([]byte, 64*1024), 1024*1024)
			for sc.Scan() {
				line := sc.Text()
				if !strings.HasPrefix(line, "data: ") {
					continue
				}
				var it entryItem
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &it); err != nil {
					continue
				}
				if asJSON {
					_ = enc.Encode(it)
				} else {
					printEntry(out, it)
				}
				if cursorFile != "" && it.Cursor != "" {
					_ = os.WriteFile(cursorFile, []byte(it.Cursor+"\n"), 0o600)
				}
			}
			return sc.Err()
		},
	}
	tailCmd.Flags().String("match", "", "CEL match expression, e.g. 'priority <= 3'")
	tailCmd.Flags().String("cursor-file", "", "Persist the last seen cursor here and resume from it")
	tailCmd.Flags().Bool("json", false, "Print raw JSON entries")
	return tailCmd
}
