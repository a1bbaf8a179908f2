package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/parleyhq/parley/internal/services/conversation"
	"github.com/parleyhq/parley/internal/services/events"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive chat with an assistant",
	Long: `Opens a REPL against the active assistant. The first message starts a
session; later messages continue it. Switching assistants starts over.

Commands inside the REPL:
  /switch <id-or-name>  switch assistant (clears the session)
  /new                  start a fresh session with the same assistant
  /knowledge            show the assistant's knowledge documents
  /quit                 leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		assistant, err := resolveAssistant(cmd)
		if err != nil {
			return err
		}

		core.GetEventBus().Subscribe(func(e events.Event) {
			if e.Type == events.KnowledgeLoaded {
				docs := core.GetKnowledgeService().Documents(e.AssistantID)
				fmt.Printf("(loaded %d knowledge documents)\n", len(docs))
			}
		})
		core.GetDirectoryService().Activate(assistant)

		fmt.Printf("Chatting with %s. /quit to leave.\n", assistant.Name)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := scanner.Text()

			if strings.HasPrefix(strings.TrimSpace(line), "/") {
				quit, err := runChatCommand(cmd, line)
				if err != nil {
					fmt.Printf("error: %v\n", err)
				}
				if quit {
					return nil
				}
				continue
			}

			resp, err := core.GetConversationService().Send(cmd.Context(), line)
			if err != nil {
				if errors.Is(err, conversation.ErrSendInFlight) {
					fmt.Println("still waiting on the previous message")
					continue
				}
				// State is untouched; the input stays in the terminal
				// scrollback for a manual retry.
				fmt.Printf("send failed: %v\n", err)
				continue
			}
			if resp == nil {
				continue
			}
			for _, msg := range resp.Messages {
				if msg.Role != backend.RoleUser {
					fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
				}
			}
		}
	},
}

func runChatCommand(cmd *cobra.Command, line string) (quit bool, err error) {
	fields := strings.Fields(strings.TrimSpace(line))
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		core.GetConversationService().Reset()
		fmt.Println("Started over; the next message opens a new session.")
		return false, nil

	case "/switch":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /switch <id-or-name>")
		}
		wanted := strings.Join(fields[1:], " ")
		for _, a := range core.GetDirectoryService().Assistants() {
			if a.ID == wanted || strings.EqualFold(a.Name, wanted) {
				core.GetDirectoryService().Activate(a)
				fmt.Printf("Now chatting with %s.\n", a.Name)
				return false, nil
			}
		}
		return false, fmt.Errorf("no assistant matches %q", wanted)

	case "/knowledge":
		active, ok := core.GetDirectoryService().Active()
		if !ok {
			return false, fmt.Errorf("no active assistant")
		}
		docs, err := core.GetKnowledgeService().LoadFor(cmd.Context(), active.ID)
		if err != nil {
			return false, err
		}
		if len(docs) == 0 {
			fmt.Println("No knowledge yet.")
		}
		for _, doc := range docs {
			fmt.Printf("- %s: %s\n", doc.Title, excerpt(doc.Content, 80))
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
}

func init() {
	chatCmd.Flags().String("assistant", "", "assistant id or name (defaults to the active one)")
}
