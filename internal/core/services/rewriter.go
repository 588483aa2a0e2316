package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// intentConfidenceFloor is the minimum score for an intent to be reported.
const intentConfidenceFloor = 0.3

// intentPattern scores one legal intent: keyword hits count 0.3 each,
// question-pattern hits 0.5 each, capped at 1.0. The slice is ordered so
// ties deterministically keep the first-declared intent.
type intentPattern struct {
	intent    domain.Intent
	keywords  []string
	questions []string
}

var intentPatterns = []intentPattern{
	{domain.IntentPayment,
		[]string{"payment", "pay", "compensation", "fee", "invoice", "billing", "price", "cost", "amount", "remuneration"},
		[]string{"how much", "what is the payment", "payment terms", "when is payment"}},
	{domain.IntentTermination,
		[]string{"termination", "terminate", "cancel", "end", "expire", "expiration", "rescind"},
		[]string{"how to terminate", "termination clause", "when can i cancel"}},
	{domain.IntentLiability,
		[]string{"liability", "liable", "responsible", "responsibility", "damage", "loss", "harm"},
		[]string{"who is liable", "liability clause", "what are the liabilities"}},
	{domain.IntentIndemnification,
		[]string{"indemnif", "indemnity", "hold harmless", "defend", "defense"},
		[]string{"indemnification", "who indemnifies", "indemnity clause"}},
	{domain.IntentScope,
		[]string{"scope", "work", "services", "deliverables", "obligations", "duties", "responsibilities"},
		[]string{"what is the scope", "scope of work", "what services", "deliverables"}},
	{domain.IntentConfidentiality,
		[]string{"confidential", "non-disclosure", "nda", "proprietary", "secret", "privacy"},
		[]string{"confidentiality", "non-disclosure", "what is confidential"}},
	{domain.IntentWarranty,
		[]string{"warranty", "warrant", "guarantee", "representation", "warranties"},
		[]string{"warranty", "what warranties", "guarantee"}},
	{domain.IntentInsurance,
		[]string{"insurance", "coverage", "policy", "insured", "insurer"},
		[]string{"insurance", "what insurance", "coverage requirements"}},
	{domain.IntentDispute,
		[]string{"dispute", "arbitration", "mediation", "jurisdiction", "governing law", "litigation"},
		[]string{"dispute resolution", "how to resolve disputes", "jurisdiction"}},
}

// expansionTerms are intent-specific synonyms appended during expansion
// when not already present in the query.
var expansionTerms = map[domain.Intent][]string{
	domain.IntentPayment:     {"compensation", "remuneration", "fee", "invoice"},
	domain.IntentTermination: {"cancellation", "expiration", "ending"},
	domain.IntentLiability:   {"responsibility", "accountability"},
	domain.IntentScope:       {"work", "services", "deliverables"},
}

// questionRewrites append retrieval-oriented terms for common
// interrogative patterns. First match wins.
var questionRewrites = []struct {
	re       *regexp.Regexp
	addition string
}{
	{regexp.MustCompile(`(?i)what (is|are) (the )?(payment|fee|cost)`), "payment terms compensation fee"},
	{regexp.MustCompile(`(?i)how (much|many)`), "amount quantity number"},
	{regexp.MustCompile(`(?i)when (is|are|can|do)`), "time date schedule deadline"},
	{regexp.MustCompile(`(?i)who (is|are)`), "party person entity responsible"},
	{regexp.MustCompile(`(?i)where (is|are)`), "location place section"},
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// queryStopWords are dropped when extracting key terms for keyword
// matching.
var queryStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "should": true, "could": true, "may": true,
	"might": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "what": true, "where": true, "when": true, "who": true,
	"why": true, "how": true, "which": true,
}

// QueryRewriter detects legal intent and expands queries before embedding.
// It is pure and deterministic; failure cannot occur, so the retriever
// never needs an exception-driven fallback.
type QueryRewriter struct{}

// NewQueryRewriter creates a query rewriter.
func NewQueryRewriter() *QueryRewriter {
	return &QueryRewriter{}
}

// Rewrite produces the expanded and retrieval-oriented variants of a query
// along with the detected intent.
func (r *QueryRewriter) Rewrite(query string) domain.RewrittenQuery {
	intent, confidence := r.DetectIntent(query)

	result := domain.RewrittenQuery{
		Original:   query,
		Expanded:   r.expand(query, intent),
		Rewritten:  r.rewriteForRetrieval(query, intent),
		Intent:     intent,
		Confidence: confidence,
	}

	if result.Rewritten != query {
		logger.Info("Query rewritten: %q -> %q (intent: %s)", query, result.Rewritten, intent)
	}
	return result
}

// DetectIntent scores each legal intent against the lower-cased query and
// returns the best one above the confidence floor.
func (r *QueryRewriter) DetectIntent(query string) (domain.Intent, float64) {
	lower := strings.ToLower(query)
	best := domain.IntentNone
	bestScore := 0.0

	for _, p := range intentPatterns {
		score := 0.0
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				score += 0.3
			}
		}
		for _, q := range p.questions {
			if strings.Contains(lower, q) {
				score += 0.5
			}
		}
		if score > 1.0 {
			score = 1.0
		}
		if score > bestScore {
			bestScore = score
			best = p.intent
		}
	}

	if bestScore <= intentConfidenceFloor {
		return domain.IntentNone, 0.0
	}
	return best, bestScore
}

// expand appends intent synonyms and generic legal context terms not
// already present in the query.
func (r *QueryRewriter) expand(query string, intent domain.Intent) string {
	lower := strings.ToLower(query)
	var added []string

	for _, term := range expansionTerms[intent] {
		if !strings.Contains(lower, term) {
			added = append(added, term)
		}
	}

	if isInterrogative(lower) {
		for _, term := range []string{"clause", "provision", "section", "term", "agreement"} {
			if !strings.Contains(lower, term) {
				added = append(added, term)
			}
		}
	}

	if len(added) == 0 {
		return query
	}
	return query + " " + strings.Join(added, " ")
}

// rewriteForRetrieval appends question-pattern additions and up to two
// absent intent keywords, producing the variant used for embedding.
func (r *QueryRewriter) rewriteForRetrieval(query string, intent domain.Intent) string {
	rewritten := query
	for _, qr := range questionRewrites {
		if qr.re.MatchString(query) {
			rewritten = query + " " + qr.addition
			break
		}
	}

	if intent != domain.IntentNone {
		lower := strings.ToLower(query)
		for _, p := range intentPatterns {
			if p.intent != intent {
				continue
			}
			added := 0
			for _, kw := range p.keywords {
				if !strings.Contains(lower, kw) {
					rewritten += " " + kw
					added++
					if added == 2 {
						break
					}
				}
			}
			break
		}
	}

	return strings.TrimSpace(rewritten)
}

// KeyTerms extracts lower-cased query terms with stop words and very short
// words removed, for keyword boosting.
func (r *QueryRewriter) KeyTerms(query string) []string {
	var terms []string
	for _, w := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if len(w) > 2 && !queryStopWords[w] {
			terms = append(terms, w)
		}
	}
	return terms
}

func isInterrogative(lower string) bool {
	for _, w := range []string{"what", "where", "how", "when"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
