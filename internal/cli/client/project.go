package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CreateProjectRequest represents the project creation API request.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// ProjectCmd creates the project command group.
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage research projects",
	}

	cmd.AddCommand(projectCreateCmd())
	cmd.AddCommand(projectSwitchCmd())
	cmd.AddCommand(projectListCmd())

	return cmd
}

func projectCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project in the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/projects", CreateProjectRequest{Name: args[0]})
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			var project struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := json.Unmarshal(resp.Data, &project); err != nil {
				return fmt.Errorf("failed to parse project: %w", err)
			}
			fmt.Printf("Created project '%s' (id: %s)\n", project.Name, project.ID)
			return nil
		},
	}
}

func projectSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id>",
		Short: "Switch the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/projects/"+args[0]+"/switch", nil); err != nil {
				return fmt.Errorf("failed to switch project: %w", err)
			}
			fmt.Printf("Switched to project %s\n", args[0])
			return nil
		},
	}
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active profile's projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := fetchSnapshot()
			if err != nil {
				return err
			}

			var found bool
			for _, p := range snapshot.Profiles {
				if p.ID != snapshot.ActiveProfileID {
					continue
				}
				found = true
				for _, project := range p.Projects {
					marker := " "
					if project.ID == p.ActiveProjectID {
						marker = "*"
					}
					fmt.Printf("%s %s (id: %s, %d in knowledge base, %d saved)\n",
						marker, project.Name, project.ID,
						len(project.KnowledgeBaseArticles), len(project.SavedArticles))
				}
			}
			if !found {
				fmt.Println("No active profile. Select one with 'biomente profile select <id>'.")
			}
			return nil
		},
	}
}
