package main

import (
	"fmt"
	"strings"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/spf13/cobra"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage an assistant's knowledge documents",
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the assistant's knowledge documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		assistant, err := resolveAssistant(cmd)
		if err != nil {
			return err
		}

		docs, err := core.GetKnowledgeService().LoadFor(cmd.Context(), assistant.ID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Printf("No knowledge yet for %s.\n", assistant.Name)
			return nil
		}
		for _, doc := range docs {
			fmt.Printf("%s  %s\n", doc.ID, doc.Title)
			fmt.Printf("    %s\n", excerpt(doc.Content, 120))
		}
		return nil
	},
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a knowledge document to the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		assistant, err := resolveAssistant(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")

		doc, err := core.GetKnowledgeService().Add(cmd.Context(), assistant.ID, title, content)
		if err != nil {
			return err
		}
		fmt.Printf("Added %q to %s (%s)\n", doc.Title, assistant.Name, doc.ID)
		return nil
	},
}

// resolveAssistant picks the assistant named by --assistant (id or name), or
// the active one after a refresh when the flag is absent.
func resolveAssistant(cmd *cobra.Command) (backend.Assistant, error) {
	directory := core.GetDirectoryService()
	if err := directory.Refresh(cmd.Context()); err != nil {
		return backend.Assistant{}, err
	}

	wanted, _ := cmd.Flags().GetString("assistant")
	if wanted == "" {
		active, ok := directory.Active()
		if !ok {
			return backend.Assistant{}, fmt.Errorf("no assistants exist yet")
		}
		return active, nil
	}

	for _, a := range directory.Assistants() {
		if a.ID == wanted || strings.EqualFold(a.Name, wanted) {
			directory.Activate(a)
			return a, nil
		}
	}
	return backend.Assistant{}, fmt.Errorf("no assistant matches %q", wanted)
}

// excerpt truncates by runes so multibyte content is never cut mid-sequence.
func excerpt(text string, limit int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func init() {
	knowledgeCmd.PersistentFlags().String("assistant", "", "assistant id or name (defaults to the active one)")
	knowledgeAddCmd.Flags().String("title", "", "document title (required)")
	knowledgeAddCmd.Flags().String("content", "", "document content (required)")
	knowledgeAddCmd.MarkFlagRequired("title")
	knowledgeAddCmd.MarkFlagRequired("content")

	knowledgeCmd.AddCommand(knowledgeListCmd, knowledgeAddCmd)
}
