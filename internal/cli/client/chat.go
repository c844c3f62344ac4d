package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	DOI     string `json:"doi"`
	Message string `json:"message"`
}

// ChatCmd creates the chat command. Sending "/cite" returns a formatted citation
// instead of a conversational reply.
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <doi> <message>",
		Short: "Discuss an article with the assistant",
		Long:  "Sends one message in the conversation about an article. Use the message '/cite' to get an APA 7 citation for the article.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/chat", ChatRequest{DOI: args[0], Message: args[1]})
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}

			var result struct {
				Reply string `json:"reply"`
			}
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse reply: %w", err)
			}
			fmt.Println(result.Reply)
			return nil
		},
	}

	cmd.AddCommand(chatEndCmd())

	return cmd
}

func chatEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <doi>",
		Short: "End the conversation about an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Delete("/chat/" + args[0]); err != nil {
				return fmt.Errorf("failed to end chat: %w", err)
			}
			fmt.Println("Conversation ended.")
			return nil
		},
	}
}
