package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/beam-cloud/emailreader/pkg/reconcile"
	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt [emails.json]",
	Short: "Print the reconciliation prompt for a saved batch",
	Long: `Print the reconciliation prompt built from --patterns, --scheduled and an
optional JSON file of messages as written by "login --json".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := reconcile.LoadPatterns(patternsPath)
		if err != nil {
			return err
		}
		scheduled, err := reconcile.LoadScheduled(scheduledPath)
		if err != nil {
			return err
		}

		var batch []*types.EmailMessage
		if len(args) == 1 {
			if batch, err = loadBatch(args[0]); err != nil {
				return err
			}
		}

		prompt := reconcile.BuildPrompt(patterns, scheduled, batch)
		if PrintJSON(prompt.Sections) {
			return nil
		}
		fmt.Println(prompt.String())
		return nil
	},
}

// loadBatch reads either a bare list of message views or a saved login result
func loadBatch(path string) ([]*types.EmailMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var views []types.EmailView
	if err := json.Unmarshal(data, &views); err != nil {
		var saved loginResult
		if err := json.Unmarshal(data, &saved); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		views = saved.Messages
	}

	batch := make([]*types.EmailMessage, 0, len(views))
	for _, v := range views {
		msg := &types.EmailMessage{
			ID:      v.ID,
			Subject: v.Subject,
			From:    v.From,
			Date:    v.Date,
			Snippet: v.Snippet,
			Body:    v.Body,
		}
		if v.Summary != nil {
			msg.SetSummary(*v.Summary)
		}
		batch = append(batch, msg)
	}
	return batch, nil
}
