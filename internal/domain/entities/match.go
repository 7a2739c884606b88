package entities

// MatchKind tells which path produced a match. Scores from different
// kinds live on different scales and must not be compared directly.
type MatchKind string

const (
	MatchKindLexical  MatchKind = "lexical"
	MatchKindSemantic MatchKind = "semantic"
)

// Match is one ranked result row.
type Match struct {
	Job        *Job      `json:"job"`
	Score      float64   `json:"score"`
	MatchedVia MatchKind `json:"matched_via"`
}

// MatchOutcome is the full result of one orchestrated match call.
type MatchOutcome struct {
	Matches     []Match      `json:"matches"`
	Preferences *Preferences `json:"preferences"`

	// RelaxedFields lists the constraints the fallback tier dropped, in
	// drop order. Empty when the strict tier matched.
	RelaxedFields []string `json:"relaxed_fields,omitempty"`

	// Degraded is set when an external service failure narrowed the
	// pipeline (extraction skipped or semantic ranking skipped).
	Degraded bool `json:"degraded,omitempty"`
}
