package domain

import "time"

// Confidence is the calibration label attached to an answer.
type Confidence string

// Confidence levels derived from the mean final score of the context
// chunks. ConfidenceError marks a generator failure, never a low score.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceError  Confidence = "error"
)

// VerificationStatus classifies the outcome of the post-answer
// fact-checking pass.
type VerificationStatus string

const (
	// VerificationAllGrounded means every claim was found in context.
	VerificationAllGrounded VerificationStatus = "all_grounded"

	// VerificationSomeUngrounded means at least one claim was not found.
	VerificationSomeUngrounded VerificationStatus = "some_ungrounded"

	// VerificationMostlyUngrounded means most claims were not found.
	VerificationMostlyUngrounded VerificationStatus = "mostly_ungrounded"

	// VerificationManualReview means the verifier output could not be
	// parsed; the draft answer is returned unmodified.
	VerificationManualReview VerificationStatus = "manual_review_needed"

	// VerificationFailed means the verification call itself failed.
	VerificationFailed VerificationStatus = "verification_failed"

	// VerificationSkipped means verification was not attempted
	// (e.g. streaming mode).
	VerificationSkipped VerificationStatus = "skipped"
)

// Verification is the result of checking a draft answer's claims against
// the retrieved context.
type Verification struct {
	Status           VerificationStatus
	GroundedClaims   []string
	UngroundedClaims []string
}

// Citation maps a citation number to the chunk it refers to. Numbers are
// unique and monotonically assigned within one ContextBundle.
type Citation struct {
	Number       int
	Filename     string
	Page         int
	SectionTitle string
	ChunkIndex   int
}

// ContextBundle is the assembled, section-grouped context fed to the
// generator, plus its citation bookkeeping. One per answered query.
type ContextBundle struct {
	// Text is the rendered context with section headers and
	// [Source N] citation lines.
	Text string

	// Citations is the ordered citation list.
	Citations []Citation

	// Sections lists the section titles present, in render order.
	Sections []string

	// MissingExhibits names exhibits referenced in the context without
	// substantial body text following, so the generator can avoid
	// inventing their contents.
	MissingExhibits []string
}

// Source is one cited source returned with an answer.
type Source struct {
	// Text is a snippet of the chunk (bounded length).
	Text string

	// Score is the chunk's final relevance score.
	Score float64

	FileID       string
	Filename     string
	Page         int
	ChunkIndex   int
	SectionTitle string
}

// AnswerResult is the terminal output of the pipeline. Ownership passes to
// the calling conversation layer, which may persist it.
type AnswerResult struct {
	// Answer is the final (possibly revised) answer text.
	Answer string

	// Sources are the citations backing the answer.
	Sources []Source

	// Confidence is the calibration label for the answer.
	Confidence Confidence

	// Verification is the outcome of the fact-checking pass.
	Verification Verification

	// ModelUsed names the model that produced the answer.
	ModelUsed string

	// TokensUsed is the total token count reported by the provider.
	TokensUsed int

	// RetrievedChunks is how many context chunks backed the answer.
	RetrievedChunks int

	// ResponseTime is the end-to-end pipeline latency.
	ResponseTime time.Duration

	// MissingExhibits carries the assembler's missing-exhibit flags.
	MissingExhibits []string

	// FollowUps are suggested follow-up questions, best effort.
	FollowUps []string
}
