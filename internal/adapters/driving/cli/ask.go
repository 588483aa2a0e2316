package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driving"
)

var (
	askFiles []string
	askTopK  int
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Answers a question using retrieval over the indexed documents.
Every factual claim in the answer carries a [Source N] citation, and the
answer is checked against the retrieved context before being returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&askFiles, "files", nil, "restrict retrieval to these document IDs")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of context chunks to retrieve")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	result, err := answerService.Ask(context.Background(), driving.AskRequest{
		Query:   args[0],
		FileIDs: askFiles,
		TopK:    askTopK,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputAnswer(cmd, result)
}

func outputAnswer(cmd *cobra.Command, result *domain.AnswerResult) error {
	cmd.Println(result.Answer)
	cmd.Println()
	cmd.Printf("Confidence: %s", result.Confidence)
	if result.Verification.Status != domain.VerificationSkipped {
		cmd.Printf("  Verification: %s", result.Verification.Status)
	}
	cmd.Println()

	if len(result.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s", i+1, src.Filename)
			if src.Page > 0 {
				cmd.Printf(", page %d", src.Page)
			}
			if src.SectionTitle != "" {
				cmd.Printf(" (%s)", src.SectionTitle)
			}
			cmd.Printf(" (%.2f)\n", src.Score)
		}
	}
	if len(result.MissingExhibits) > 0 {
		cmd.Println("\nReferenced but not indexed:")
		for _, exhibit := range result.MissingExhibits {
			cmd.Printf("  - %s\n", exhibit)
		}
	}
	if len(result.FollowUps) > 0 {
		cmd.Println("\nFollow-up questions:")
		for _, q := range result.FollowUps {
			cmd.Printf("  - %s\n", q)
		}
	}
	cmd.Printf("\n%d chunks, %s, %s\n",
		result.RetrievedChunks, result.ModelUsed, result.ResponseTime.Round(time.Millisecond))
	return nil
}
