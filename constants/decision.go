package constants

// Decision is the binary bid recommendation.
type Decision string

// Stable values (written verbatim into the scorecard).
const (
	DecisionGo   Decision = "GO"
	DecisionNoGo Decision = "NO-GO"
)

// Outcome records which branch of a rule produced its points.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
	OutcomeDefault  Outcome = "default"
	OutcomeNone     Outcome = "none"
)

const (
	// DefaultThreshold is the minimum total for a GO recommendation.
	DefaultThreshold = 75.0
	// DefaultSnippetLength caps the snippet embedded in a rule comment.
	DefaultSnippetLength = 120
	// DefaultFallbackLength is how much page text is quoted when no single line holds a keyword.
	DefaultFallbackLength = 200
)
