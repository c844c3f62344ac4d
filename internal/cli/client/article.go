package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biomente/biomente/internal/domain"
)

// SaveArticleRequest represents the save-toggle API request.
type SaveArticleRequest struct {
	DOI string `json:"doi"`
}

// SaveCmd creates the save command.
func SaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <doi>",
		Short: "Save or unsave an article",
		Long:  "Toggles the saved status of an article in the active project. Saving an already-saved article removes it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/articles/save", SaveArticleRequest{DOI: args[0]}); err != nil {
				return fmt.Errorf("failed to toggle saved status: %w", err)
			}
			fmt.Printf("Toggled saved status of %s\n", args[0])
			return nil
		},
	}
}

// CompareCmd creates the compare command group.
func CompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare articles",
	}

	cmd.AddCommand(compareMarkCmd())
	cmd.AddCommand(compareRunCmd())
	cmd.AddCommand(compareShowCmd())
	cmd.AddCommand(compareClearCmd())

	return cmd
}

func compareMarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark <doi>",
		Short: "Mark or unmark an article for comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/articles/compare/"+args[0], nil); err != nil {
				return fmt.Errorf("failed to mark article: %w", err)
			}
			fmt.Printf("Toggled comparison mark on %s\n", args[0])
			return nil
		},
	}
}

func compareRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate a comparative analysis of the marked articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/comparison", nil)
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			return printComparison(cmd, resp.Data)
		},
	}
}

func compareShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current comparison result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/comparison")
			if err != nil {
				return fmt.Errorf("failed to fetch comparison: %w", err)
			}
			return printComparison(cmd, resp.Data)
		},
	}
}

func compareClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the current comparison result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Delete("/comparison"); err != nil {
				return fmt.Errorf("failed to clear comparison: %w", err)
			}
			fmt.Println("Comparison cleared.")
			return nil
		},
	}
}

func printComparison(cmd *cobra.Command, data json.RawMessage) error {
	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		fmt.Println(string(data))
		return nil
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse comparison: %w", err)
	}

	fmt.Printf("Compared %d articles:\n", len(result.Articles))
	for _, a := range result.Articles {
		fmt.Printf("  - %s (%s)\n", a.Title, a.DOI)
	}
	fmt.Println()
	fmt.Println(result.Analysis)
	return nil
}
