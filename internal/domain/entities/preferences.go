package entities

import "encoding/json"

// Preferences is the structured form of a free-text job query. A nil
// field means the user did not express that constraint; there is no
// required field. Values are already normalized when a Preferences leaves
// the extraction boundary.
type Preferences struct {
	Role       *string `json:"role,omitempty"`
	Location   *string `json:"location,omitempty"`
	Experience *string `json:"experience,omitempty"`
	Salary     *string `json:"salary,omitempty"`
}

// IsEmpty reports whether no field is present.
func (p *Preferences) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Role == nil && p.Location == nil && p.Experience == nil && p.Salary == nil
}

// FieldCount returns the number of present fields.
func (p *Preferences) FieldCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, f := range []*string{p.Role, p.Location, p.Experience, p.Salary} {
		if f != nil {
			n++
		}
	}
	return n
}

// MarshalString serializes the preferences for the search log. An empty
// record serializes to "{}" rather than failing.
func (p *Preferences) MarshalString() string {
	if p == nil {
		return "{}"
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(data)
}
