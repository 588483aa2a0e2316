// Package cli provides the lexirag command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexirag/internal/core/ports/driving"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	answerService driving.AnswerService
	indexService  driving.IndexService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "lexirag",
	Short: "Question answering over legal documents",
	Long: `lexirag indexes legal documents into a vector store and answers
questions about them with grounded, cited answers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetAnswerService injects the answering service.
func SetAnswerService(svc driving.AnswerService) {
	answerService = svc
}

// SetIndexService injects the indexing service.
func SetIndexService(svc driving.IndexService) {
	indexService = svc
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
