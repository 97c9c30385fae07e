package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/trailmind/trailmind/pkg/cli"
)

var (
	cfgFile     string
	contextName string
	userID      string
	verbose     bool

	globalConfig *cli.Config
	styles       = cli.NewStyles(cli.DefaultTheme)
)

var rootCmd = &cobra.Command{
	Use:   "trailmind",
	Short: "Adventure travel planning CLI",
	Long: `trailmind - plan outdoor adventures from your terminal.

A conversational travel planner for hiking, camping, and backpacking
trips. Chat with specialist agents, get trip suggestions, and talk to
the assistant over realtime voice.

Examples:
  # Set up a context
  trailmind config add-context default --api-key YOUR_API_KEY

  # Start a conversation
  trailmind chat

  # Talk instead of typing
  trailmind voice --input mic.pcm

  # Review saved trips
  trailmind trips list
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.trailmind/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "default", "user ID for history and saved trips")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(tripsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// currentContext resolves the active context for commands that need one.
func currentContext() (*cli.Context, error) {
	return globalConfig.ResolveContext(contextName)
}
