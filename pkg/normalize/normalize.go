package normalize

import "strings"

// FieldKind identifies which preference field a value belongs to, since
// synonym tables differ per field.
type FieldKind string

const (
	FieldRole       FieldKind = "role"
	FieldLocation   FieldKind = "location"
	FieldExperience FieldKind = "experience"
	FieldSalary     FieldKind = "salary"
)

// Alias tables map lower-cased variants to one canonical form per field.
// Canonical forms must never appear as keys, which keeps Normalize
// idempotent.
var locationAliases = map[string]string{
	"ny":            "new york",
	"nyc":           "new york",
	"new york city": "new york",
	"manhattan":     "new york",
	"ma":            "boston",
	"mass":          "boston",
	"massachusetts": "boston",
	"chi":           "chicago",
	"il":            "chicago",
	"illinois":      "chicago",
	"sf":            "san francisco",
	"san fran":      "san francisco",
	"bay area":      "san francisco",
	"dc":            "washington",
	"washington dc": "washington",
	"la":            "los angeles",
}

var experienceAliases = map[string]string{
	"manager level":  "manager",
	"management":     "manager",
	"managerial":     "manager",
	"team lead":      "manager",
	"senior level":   "senior",
	"experienced":    "senior",
	"advanced":       "senior",
	"entry":          "associate",
	"entry level":    "associate",
	"junior":         "associate",
	"graduate":       "associate",
	"director level": "director",
	"partner level":  "partner",
}

var roleAliases = map[string]string{
	"it audit":                     "technology audit",
	"tech audit":                   "technology audit",
	"information technology audit": "technology audit",
	"audit lead":                   "audit manager",
	"audit team manager":           "audit manager",
	"auditing manager":             "audit manager",
	"tax accounting":               "tax accountant",
	"forensic accounting":          "forensic accountant",
	"risk consulting":              "risk advisory",
}

// Normalize canonicalizes a free-form preference value. Known synonyms map
// to one canonical form per field kind; unknown values pass through
// lower-cased with collapsed whitespace. Pure and idempotent.
func Normalize(kind FieldKind, raw string) string {
	v := canonical(raw)
	if v == "" {
		return ""
	}

	var table map[string]string
	switch kind {
	case FieldLocation:
		table = locationAliases
	case FieldExperience:
		table = experienceAliases
	case FieldRole:
		table = roleAliases
	default:
		// Salary has no alias table; canonical casing only.
		return v
	}

	if mapped, ok := table[v]; ok {
		return mapped
	}
	return v
}

func canonical(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), " ")
}
