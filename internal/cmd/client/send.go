package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewSendCommand constructs the `send` command: append one entry through the
// gateway's write endpoint.
func NewSendCommand(baseURL BaseURLFunc) *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Append one entry to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetInt("priority")
			extra, _ := cmd.Flags().GetStringArray("field")

			if priority < 0 || priority > 7 {
				return fmt.Errorf("invalid --priority; use 0..7")
			}
			fields := map[string]string{
				"MESSAGE":  args[0],
				"PRIORITY": strconv.Itoa(priority),
			}
			for _, f := range extra {
				name, value, ok := strings.Cut(f, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --field %q; use NAME=value", f)
				}
				fields[name] = value
			}
			body, _ := json.Marshal(map[string]any{"fields": fields})
			resp, err := http.Post(baseURL()+"/v1/entries", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				return fmt.Errorf("server: %s: %s", resp.Status, string(msg))
			}
			return nil
		},
	}
	sendCmd.Flags().Int("priority", 6, "Syslog priority 0..7 (default info)")
	sendCmd.Flags().StringArray("field", nil, "Extra NAME=value field (repeatable)")
	return sendCmd
}
