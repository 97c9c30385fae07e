package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trailmind/trailmind/pkg/agents"
	"github.com/trailmind/trailmind/pkg/history"
	"github.com/trailmind/trailmind/pkg/kv"
	"github.com/trailmind/trailmind/pkg/orchestrator"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive travel planning conversation",
	Long: `Start an interactive travel planning conversation.

With --assistant-url (or an assistant_url in the context), messages go
through the remote travel assistant and follow the welcome, exploring,
and research stages. Without one, a local team of specialist agents
(triage, search, knowledge, account) handles the conversation offline.

Inside the chat:
  /retry    retry after a connection failure
  /history  show the stored transcript
  /quit     exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("assistant-url", "", "travel assistant base URL (overrides context)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cliCtx, err := currentContext()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := kv.NewBadger(kv.BadgerOptions{Dir: globalConfig.ResolveDataDir(cliCtx)})
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()
	hist := history.New(store)

	assistantURL, _ := cmd.Flags().GetString("assistant-url")
	if assistantURL == "" {
		assistantURL = cliCtx.AssistantURL
	}

	if assistantURL != "" {
		return chatWithAssistant(ctx, assistantURL, hist)
	}
	return chatWithAgents(ctx, hist)
}

// chatWithAssistant drives the remote assistant through the stage
// machine: welcome, exploring, and an automatic research handoff.
func chatWithAssistant(ctx context.Context, baseURL string, hist *history.Store) error {
	orch := orchestrator.New(
		orchestrator.NewHTTPAssistant(baseURL, http.DefaultClient),
		orchestrator.WithThinkingHook(func(step orchestrator.ThinkingStep) {
			fmt.Println(styles.RenderThinking(step.Text))
		}),
		orchestrator.WithTripDataHook(func(trip map[string]any) {
			fmt.Println(styles.RenderTripCard(trip))
		}),
	)

	welcome := orch.Start(ctx)
	fmt.Println(styles.RenderAgentMessage("guide", welcome))
	if orch.APIFailed() {
		fmt.Println(styles.Help.Render("Connection failed; replies are canned until /retry succeeds."))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(styles.RenderUserPrompt())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/history":
			printHistory(ctx, hist)
			continue
		case "/retry":
			for _, msg := range orch.Retry(ctx) {
				printMessage(msg)
			}
			continue
		}

		replies := orch.Send(ctx, line)
		for _, msg := range replies {
			printMessage(msg)
		}
		persist(ctx, hist, append([]agents.Message{lastUserMessage(orch)}, replies...))
	}
	return scanner.Err()
}

// chatWithAgents routes every message through the local specialist team.
func chatWithAgents(ctx context.Context, hist *history.Store) error {
	manager := agents.NewManager()

	messages, err := hist.Messages(ctx, userID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(messages) > 0 {
		fmt.Println(styles.Help.Render(fmt.Sprintf("Resuming conversation with %d messages.", len(messages))))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(styles.RenderUserPrompt())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/quit", "/exit":
			return nil
		case "/history":
			printHistory(ctx, hist)
			continue
		}

		userMsg := agents.NewUserMessage(line)
		messages = append(messages, userMsg)

		resp := manager.Handle(ctx, &agents.Request{
			Messages: messages,
			UserID:   userID,
		})
		printMessage(resp.Message)
		for _, action := range resp.Actions {
			fmt.Println(styles.Help.Render(fmt.Sprintf("[action: %s]", action.Type)))
		}

		stored := resp.HistoryMessage()
		messages = append(messages, stored)
		persist(ctx, hist, []agents.Message{userMsg, stored})
	}
	return scanner.Err()
}

func printMessage(msg agents.Message) {
	fmt.Println(styles.RenderAgentMessage(string(msg.AgentRole), msg.Content))
}

func printHistory(ctx context.Context, hist *history.Store) {
	messages, err := hist.Messages(ctx, userID)
	if err != nil {
		fmt.Println(styles.Error.Render("history: " + err.Error()))
		return
	}
	for _, msg := range messages {
		if msg.Role == agents.MessageRoleUser {
			fmt.Println(styles.UserLabel.Render("you:") + " " + msg.Content)
		} else {
			printMessage(msg)
		}
	}
}

func persist(ctx context.Context, hist *history.Store, msgs []agents.Message) {
	keep := msgs[:0]
	for _, msg := range msgs {
		if msg.ID != "" {
			keep = append(keep, msg)
		}
	}
	if err := hist.Append(ctx, userID, keep...); err != nil {
		fmt.Println(styles.Error.Render("history: " + err.Error()))
	}
}

// lastUserMessage returns the newest user message from the orchestrator's
// transcript so it can be persisted alongside the replies.
func lastUserMessage(orch *orchestrator.Orchestrator) agents.Message {
	msgs := orch.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == agents.MessageRoleUser {
			return msgs[i]
		}
	}
	return agents.Message{}
}
