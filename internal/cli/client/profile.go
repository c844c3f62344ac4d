package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biomente/biomente/internal/state"
)

// CreateProfileRequest represents the profile creation API request.
type CreateProfileRequest struct {
	Name string `json:"name"`
}

// ProfileCmd creates the profile command group.
func ProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage researcher profiles",
	}

	cmd.AddCommand(profileCreateCmd())
	cmd.AddCommand(profileSelectCmd())
	cmd.AddCommand(profileListCmd())
	cmd.AddCommand(profileLogoutCmd())

	return cmd
}

func profileCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile and make it active",
		Long:  "Creates a new researcher profile with a default first project and selects it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/profiles", CreateProfileRequest{Name: args[0]})
			if err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				fmt.Println(string(resp.Data))
				return nil
			}

			var profile struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := json.Unmarshal(resp.Data, &profile); err != nil {
				return fmt.Errorf("failed to parse profile: %w", err)
			}
			fmt.Printf("Created profile '%s' (id: %s)\n", profile.Name, profile.ID)
			return nil
		},
	}
}

func profileSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Select the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/profiles/"+args[0]+"/select", nil); err != nil {
				return fmt.Errorf("failed to select profile: %w", err)
			}
			fmt.Printf("Selected profile %s\n", args[0])
			return nil
		},
	}
}

func profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := fetchSnapshot()
			if err != nil {
				return err
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(snapshot.Profiles, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(snapshot.Profiles) == 0 {
				fmt.Println("No profiles yet. Create one with 'biomente profile create <name>'.")
				return nil
			}
			for _, p := range snapshot.Profiles {
				marker := " "
				if p.ID == snapshot.ActiveProfileID {
					marker = "*"
				}
				fmt.Printf("%s %s (id: %s, %d projects)\n", marker, p.Name, p.ID, len(p.Projects))
			}
			return nil
		},
	}
}

func profileLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/logout", nil); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func fetchSnapshot() (*state.Snapshot, error) {
	api, err := NewAPIClient()
	if err != nil {
		return nil, err
	}

	resp, err := api.Get("/state")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state: %w", err)
	}

	var snapshot state.Snapshot
	if err := json.Unmarshal(resp.Data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &snapshot, nil
}
