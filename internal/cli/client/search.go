package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biomente/biomente/internal/state"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query            string `json:"query"`
	UseKnowledgeBase *bool  `json:"use_knowledge_base,omitempty"`
}

// FragmentRequest represents the fragment-search API request.
type FragmentRequest struct {
	Fragment string `json:"fragment"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var useKB bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the scientific literature",
		Long:  "Asks the assistant for three relevant articles. The query is translated to English first, and the project's knowledge base biases the results when the toggle is on.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			req := SearchRequest{Query: args[0]}
			if cmd.Flags().Changed("kb") {
				req.UseKnowledgeBase = &useKB
			}
			return runSearch("/search", req, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&useKB, "kb", true, "Bias results using the project's knowledge base")

	return cmd
}

// MoreCmd creates the command that loads additional results for the current search.
func MoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "more",
		Short: "Load more results for the current search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch("/search/more", nil, outputJSON)
		},
	}
}

// FragmentCmd creates the command that searches from a text fragment.
func FragmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fragment <text>",
		Short: "Search literature related to a text fragment",
		Long:  "Searches the wider literature for articles related to a fragment of an analyzed document. The knowledge-base toggle is switched off for fragment searches.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch("/search/fragment", FragmentRequest{Fragment: args[0]}, outputJSON)
		},
	}
}

func runSearch(path string, body interface{}, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post(path, body)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var view state.View
	if err := json.Unmarshal(resp.Data, &view); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(view, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printResults(view)
	return nil
}

func printResults(view state.View) {
	if view.Error != "" {
		fmt.Printf("Error: %s\n", view.Error)
		return
	}
	if len(view.SearchResults) == 0 {
		fmt.Println("No results found.")
		return
	}

	if view.TranslatedQuery != "" && view.TranslatedQuery != view.Query {
		fmt.Printf("Searched as: %s\n\n", view.TranslatedQuery)
	}

	fmt.Printf("Found %d results:\n\n", len(view.SearchResults))
	for i, article := range view.SearchResults {
		fmt.Printf("%d. %s\n", i+1, article.Title)
		if len(article.Authors) > 0 {
			fmt.Printf("   %s\n", strings.Join(article.Authors, ", "))
		}
		fmt.Printf("   %s (%d)\n", article.Journal, article.Year)
		fmt.Printf("   DOI: %s\n", article.DOI)
		if article.Summary != "" {
			fmt.Printf("   %s\n", truncateLine(article.Summary, 200))
		}
		if article.Relevance != "" {
			fmt.Printf("   Relevance: %s\n", truncateLine(article.Relevance, 160))
		}
		if i < len(view.SearchResults)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
}

func truncateLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
