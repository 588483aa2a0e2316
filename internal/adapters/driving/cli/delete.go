package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id...]",
	Short: "Remove documents from the vector store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	ctx := context.Background()
	for _, docID := range args {
		if err := indexService.Remove(ctx, docID); err != nil {
			return fmt.Errorf("delete %s: %w", docID, err)
		}
		cmd.Printf("Removed %s\n", docID)
	}
	return nil
}
