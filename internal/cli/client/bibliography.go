package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BibliographyCmd creates the bibliography command.
func BibliographyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bibliography",
		Short: "Export an APA 7 bibliography of saved articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/bibliography", nil)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			var result struct {
				Bibliography string `json:"bibliography"`
			}
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if result.Bibliography == "" {
				fmt.Println("No saved articles to export.")
				return nil
			}
			fmt.Println(result.Bibliography)
			return nil
		},
	}
}
