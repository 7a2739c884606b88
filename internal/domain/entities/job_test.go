package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingText_JoinsPresentFields(t *testing.T) {
	job := &Job{
		JobTitle:  "Senior Auditor",
		Location:  "Boston",
		Seniority: "senior",
		Service:   "audit",
	}

	assert.Equal(t,
		"Title: Senior Auditor | Location: Boston | Seniority: senior | Service: audit",
		job.EmbeddingText(),
	)
}

func TestEmbeddingText_SkipsEmptyFields(t *testing.T) {
	job := &Job{JobTitle: "Auditor"}
	assert.Equal(t, "Title: Auditor", job.EmbeddingText())

	empty := &Job{}
	assert.Equal(t, "", empty.EmbeddingText())
}

func TestPreferences_MarshalString(t *testing.T) {
	role := "audit"
	prefs := &Preferences{Role: &role}
	assert.JSONEq(t, `{"role":"audit"}`, prefs.MarshalString())

	var nilPrefs *Preferences
	assert.Equal(t, "{}", nilPrefs.MarshalString())
	assert.True(t, nilPrefs.IsEmpty())
}
