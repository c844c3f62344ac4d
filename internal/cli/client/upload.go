package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"
)

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Add a document to the knowledge base",
		Long:  "Uploads a .txt, .pdf, or .docx document. The assistant extracts its text, builds a bibliographic record, and analyzes it in the background.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.PostFile("/documents", "file", args[0])
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				fmt.Println(string(resp.Data))
				return nil
			}

			var article struct {
				Title string `json:"title"`
				DOI   string `json:"doi"`
			}
			if err := json.Unmarshal(resp.Data, &article); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			fmt.Printf("Added '%s' to the knowledge base (doi: %s)\n", article.Title, article.DOI)
			return nil
		},
	}
}

// DownloadCmd creates the command that retrieves an archived original document.
func DownloadCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "download <key>",
		Short: "Download an archived original document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/documents/download?key=" + url.QueryEscape(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get download URL: %w", err)
			}

			var result struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			target := outputPath
			if target == "" {
				target = filepath.Base(args[0])
			}
			if err := api.DownloadFile(result.URL, target); err != nil {
				return err
			}
			fmt.Printf("Downloaded to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output-file", "o", "", "Destination path (defaults to the key's base name)")

	return cmd
}
