package cli

import (
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser and load the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, _, err := newOrchestrator()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		attempt, err := orch.Login(ctx)
		if err != nil {
			return err
		}
		defer attempt.Cancel()

		if !IsJSONOutput() {
			PrintInfo("Opening your browser to sign in with Google")
			PrintHint("If nothing opens, visit: " + attempt.AuthorizeURL)
		}
		return runAttempt(ctx, orch, attempt)
	},
}

var redirectCmd = &cobra.Command{
	Use:   "redirect <url>",
	Short: "Complete a login from an emailreader:// redirect URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, _, err := newOrchestrator()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		attempt, err := orch.HandleDeepLink(ctx, args[0])
		if err != nil {
			return err
		}
		defer attempt.Cancel()
		return runAttempt(ctx, orch, attempt)
	},
}
