package openai

import (
	"encoding/json"
	"strings"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
)

const extractionSystemPrompt = `You extract job search preferences from a user message.

Respond with a single JSON object and nothing else. The object has exactly these keys:
  "role"       - the job title or function the user wants, as a short phrase
  "location"   - the city, region or country mentioned
  "experience" - the seniority or experience level mentioned
  "salary"     - any salary expectation mentioned, as written by the user

Rules:
- Use null for any key the message does not mention. Never invent values.
- Copy the user's wording; do not translate or expand abbreviations.
- Do not add explanations, markdown or extra keys.

Example: for "senior audit jobs in boston paying 120k" respond
{"role": "audit", "location": "boston", "experience": "senior", "salary": "120k"}`

// stripCodeFences removes a leading/trailing markdown code fence that
// chat models sometimes wrap around JSON output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parsePreferencesPayload decodes the model's JSON object into
// preferences. Keys that are missing, null, non-string or blank are
// treated as absent rather than as errors; unknown keys are ignored.
func parsePreferencesPayload(data []byte) (*entities.Preferences, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	prefs := &entities.Preferences{
		Role:       stringField(raw, "role"),
		Location:   stringField(raw, "location"),
		Experience: stringField(raw, "experience"),
		Salary:     stringField(raw, "salary"),
	}
	return prefs, nil
}

func stringField(raw map[string]json.RawMessage, key string) *string {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}
