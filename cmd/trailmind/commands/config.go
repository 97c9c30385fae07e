package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trailmind/trailmind/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts hold credentials and backend settings, so several setups can
coexist. Configuration is stored in ~/.trailmind/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  trailmind config add-context default --api-key YOUR_API_KEY
  trailmind config add-context local --api-key KEY --assistant-url http://localhost:8080`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		apiKey, err := cmd.Flags().GetString("api-key")
		if err != nil {
			return fmt.Errorf("failed to read 'api-key' flag: %w", err)
		}
		if apiKey == "" {
			return fmt.Errorf("--api-key is required")
		}
		assistantURL, err := cmd.Flags().GetString("assistant-url")
		if err != nil {
			return fmt.Errorf("failed to read 'assistant-url' flag: %w", err)
		}
		model, err := cmd.Flags().GetString("realtime-model")
		if err != nil {
			return fmt.Errorf("failed to read 'realtime-model' flag: %w", err)
		}
		voice, err := cmd.Flags().GetString("voice")
		if err != nil {
			return fmt.Errorf("failed to read 'voice' flag: %w", err)
		}
		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			return fmt.Errorf("failed to read 'data-dir' flag: %w", err)
		}

		ctx := &cli.Context{
			APIKey:        apiKey,
			AssistantURL:  assistantURL,
			RealtimeModel: model,
			Voice:         voice,
			DataDir:       dataDir,
		}
		if err := globalConfig.AddContext(name, ctx); err != nil {
			return err
		}

		fmt.Printf("Context %q added\n", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.DeleteContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Context %q deleted\n", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.UseContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to context %q\n", args[0])
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:   "list-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tAPI KEY\tASSISTANT URL")
		for _, name := range globalConfig.ListContexts() {
			ctx, _ := globalConfig.GetContext(name)
			marker := ""
			if name == globalConfig.CurrentContext {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, name, cli.MaskAPIKey(ctx.APIKey), ctx.AssistantURL)
		}
		return w.Flush()
	},
}

func init() {
	configAddContextCmd.Flags().String("api-key", "", "API key for the assistant and voice backends")
	configAddContextCmd.Flags().String("assistant-url", "", "base URL of the travel assistant API")
	configAddContextCmd.Flags().String("realtime-model", "", "realtime voice model ID")
	configAddContextCmd.Flags().String("voice", "", "voice for spoken responses")
	configAddContextCmd.Flags().String("data-dir", "", "directory for conversation history")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configListContextsCmd)
}
