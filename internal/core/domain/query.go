package domain

// Intent is a detected legal intent category for a query.
type Intent string

// Legal intents, in declaration order. Ties during detection keep the
// first-declared intent.
const (
	IntentPayment         Intent = "payment"
	IntentTermination     Intent = "termination"
	IntentLiability       Intent = "liability"
	IntentIndemnification Intent = "indemnification"
	IntentScope           Intent = "scope"
	IntentConfidentiality Intent = "confidentiality"
	IntentWarranty        Intent = "warranty"
	IntentInsurance       Intent = "insurance"
	IntentDispute         Intent = "dispute"

	// IntentNone means no intent cleared the confidence floor.
	IntentNone Intent = ""
)

// RewrittenQuery is the result of query rewriting: the original text plus
// the expanded and retrieval-oriented variants.
type RewrittenQuery struct {
	// Original is the user's query, unmodified.
	Original string

	// Expanded is the query with intent synonyms appended.
	Expanded string

	// Rewritten is the variant used for embedding, with question-pattern
	// additions and intent keywords appended.
	Rewritten string

	// Intent is the detected legal intent, IntentNone when undetected.
	Intent Intent

	// Confidence is the intent detection score in [0,1].
	Confidence float64
}

// ChatMessage is a single turn in a conversation with the language model.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}
