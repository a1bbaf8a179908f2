package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/parleyhq/parley/internal/infrastructure/backend"
	"github.com/spf13/cobra"
)

var assistantsCmd = &cobra.Command{
	Use:   "assistants",
	Short: "Manage assistants",
}

var assistantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assistants in server order",
	RunE: func(cmd *cobra.Command, args []string) error {
		directory := core.GetDirectoryService()
		if err := directory.Refresh(cmd.Context()); err != nil {
			return err
		}

		assistants := directory.Assistants()
		if len(assistants) == 0 {
			fmt.Println("No assistants yet. Create one with: parley assistants create --name <name>")
			return nil
		}
		for _, a := range assistants {
			marker := " "
			if a.ID == directory.ActiveID() {
				marker = "*"
			}
			fmt.Printf("%s %s  %s", marker, a.ID, a.Name)
			if a.Description != "" {
				fmt.Printf("  (%s)", a.Description)
			}
			fmt.Println()
		}
		return nil
	},
}

var assistantsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an assistant and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		systemPrompt, _ := cmd.Flags().GetString("system-prompt")

		created, err := core.GetBackendService().CreateAssistant(cmd.Context(), backend.CreateAssistantRequest{
			Name:         name,
			Description:  description,
			SystemPrompt: systemPrompt,
		})
		if err != nil {
			return err
		}

		core.GetDirectoryService().Activate(*created)
		fmt.Printf("Created assistant %s (%s)\n", created.Name, created.ID)
		return nil
	},
}

var assistantsRenameCmd = &cobra.Command{
	Use:   "rename <id>",
	Short: "Rename an assistant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("--name must not be empty")
		}

		updated, err := core.GetBackendService().UpdateAssistant(cmd.Context(), args[0], backend.UpdateAssistantRequest{
			Name: &name,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Renamed assistant %s to %s\n", updated.ID, updated.Name)
		return nil
	},
}

var assistantsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an assistant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(fmt.Sprintf("Delete assistant %q?", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}
		return core.GetDirectoryService().Remove(cmd.Context(), args[0])
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	assistantsCreateCmd.Flags().String("name", "", "assistant name (required)")
	assistantsCreateCmd.Flags().String("description", "", "short description")
	assistantsCreateCmd.Flags().String("system-prompt", "", "system prompt")
	assistantsCreateCmd.MarkFlagRequired("name")

	assistantsRenameCmd.Flags().String("name", "", "new name (required)")
	assistantsRenameCmd.MarkFlagRequired("name")

	assistantsDeleteCmd.Flags().Bool("yes", false, "skip confirmation")

	assistantsCmd.AddCommand(assistantsListCmd, assistantsCreateCmd, assistantsRenameCmd, assistantsDeleteCmd)
}
