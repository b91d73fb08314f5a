package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/beam-cloud/emailreader/pkg/common"
	"github.com/beam-cloud/emailreader/pkg/pipeline"
	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Build information (injected at compile time via ldflags)
var (
	Version = "dev"
)

var (
	configPath     string
	jsonOutput     bool
	patternsPath   string
	scheduledPath  string
	reconcileAfter bool
	timeout        time.Duration
)

// Custom help template with styled output
var helpTemplate = `{{with .Long}}{{. | trim}}

{{end}}{{if .HasAvailableSubCommands}}` + `{{.CommandPath}}` + ` ` + `<command>` + `

{{end}}{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if .IsAvailableCommand}}  {{rpad .Name .NamePadding }}  {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}
`

var rootCmd = &cobra.Command{
	Use:   "emailreader",
	Short: "Sign in with Google and read your recent inbox",
	Long: lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render("emailreader") + ` - Sign in with Google and read your recent inbox

Signs in through the browser, loads the last week of mail, optionally
summarizes each message and matches them against your scheduling patterns.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		SetJSONOutput(jsonOutput)
	},
}

func init() {
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.SetVersionTemplate(fmt.Sprintf("  %s version %s\n", BrandStyle.Render("emailreader"), Version))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnv("EMAILREADER_CONFIG", ""), "Config file (yaml or json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&patternsPath, "patterns", "", "YAML file of scheduling patterns")
	rootCmd.PersistentFlags().StringVar(&scheduledPath, "scheduled", "", "YAML file of already scheduled items")
	rootCmd.PersistentFlags().BoolVar(&reconcileAfter, "reconcile", false, "Match delivered messages against patterns")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Give up on the login after this long (0 waits indefinitely)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(redirectCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		if PrintJSON(map[string]string{"version": Version}) {
			return
		}
		PrintKeyValue("Version", Version)
	},
}

// Execute runs the CLI. Errors are printed before being returned.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(err)
	}
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig() (types.AppConfig, error) {
	var (
		cm  *common.ConfigManager[types.AppConfig]
		err error
	)
	if configPath != "" {
		cm, err = common.NewConfigManagerFromPath[types.AppConfig](configPath)
	} else {
		cm, err = common.NewConfigManager[types.AppConfig]()
	}
	if err != nil {
		return types.AppConfig{}, err
	}

	cfg := cm.GetConfig()
	common.ConfigureLogging(cfg.DebugMode, cfg.PrettyLogs)
	return cfg, nil
}

func newOrchestrator() (*pipeline.Orchestrator, types.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	deps, err := pipeline.DefaultDeps(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return pipeline.New(cfg, deps), cfg, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func reportError(err error) {
	if PrintJSON(map[string]string{"error": err.Error()}) {
		return
	}
	PrintFormattedError(err)
}
