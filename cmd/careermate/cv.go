package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCVCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Upload and analyze a CV",
	}
	cmd.AddCommand(newCVUploadCmd(a))
	return cmd
}

func newCVUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF CV for text extraction and career-field analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.chat.UploadCV(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Uploaded %s (%d pages, %d characters)\n", result.Filename, result.Pages, result.Characters)
			if result.Error != "" {
				fmt.Printf("Extraction warning: %s\n", result.Error)
			}
			if len(result.CareerFields) > 0 {
				fmt.Printf("Career fields: %s\n", strings.Join(result.CareerFields, ", "))
			}
			if result.OverallSummary != "" {
				fmt.Printf("Summary: %s\n", result.OverallSummary)
			}
			if text := strings.TrimSpace(result.Text); text != "" {
				preview := text
				if len(preview) > 500 {
					preview = preview[:500] + "..."
				}
				fmt.Printf("\nExtracted text preview:\n%s\n", preview)
			} else {
				fmt.Println("No extractable text found; this may be a scanned PDF.")
			}
			if !result.SavedToDB {
				fmt.Println("Sign in to save the analysis to your profile.")
			}
			return nil
		},
	}
}
