package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

var indexDocID string

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index documents into the vector store",
	Long: `Chunks, embeds, and indexes one or more text documents. Each
document gets a generated ID unless --id is given (single file only).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDocID, "id", "", "document ID (single file only)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if indexDocID != "" && len(args) > 1 {
		return errors.New("--id can only be used with a single file")
	}

	ctx := context.Background()
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		docID := indexDocID
		if docID == "" {
			docID = uuid.NewString()
		}
		doc := &domain.Document{
			ID:       docID,
			Filename: filepath.Base(path),
			Content:  string(content),
		}

		count, err := indexService.Index(ctx, doc)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		cmd.Printf("Indexed %s as %s (%d vectors)\n", doc.Filename, docID, count)
	}
	return nil
}
