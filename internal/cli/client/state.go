package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StateCmd creates the state command.
func StateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the assistant's current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := fetchSnapshot()
			if err != nil {
				return err
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(snapshot, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if snapshot.ActiveProfileID == "" {
				fmt.Println("No active profile.")
			} else {
				for _, p := range snapshot.Profiles {
					if p.ID != snapshot.ActiveProfileID {
						continue
					}
					fmt.Printf("Profile: %s\n", p.Name)
					if project := p.ActiveProject(); project != nil {
						fmt.Printf("Project: %s (%d in knowledge base, %d saved)\n",
							project.Name, len(project.KnowledgeBaseArticles), len(project.SavedArticles))
					}
				}
			}

			view := snapshot.View
			if view.Query != "" {
				fmt.Printf("Last query: %s (%d results)\n", view.Query, len(view.SearchResults))
			}
			if len(view.CompareDOIs) > 0 {
				fmt.Printf("Marked for comparison: %d articles\n", len(view.CompareDOIs))
			}
			if view.Error != "" {
				fmt.Printf("Error: %s\n", view.Error)
			}
			return nil
		},
	}
}
