package entities

import "time"

// Job represents one job posting in the catalog. The engine only reads
// job rows; embedding backfill is the single write path and goes through
// the repository.
type Job struct {
	ID            int64      `json:"id" db:"id"`
	FirmID        int64      `json:"firm_id" db:"firm_id"`
	FirmName      string     `json:"firm_name,omitempty" db:"-"`
	JobTitle      string     `json:"job_title" db:"job_title"`
	Seniority     string     `json:"seniority,omitempty" db:"seniority"`
	Service       string     `json:"service,omitempty" db:"service"`
	Industry      string     `json:"industry,omitempty" db:"industry"`
	Location      string     `json:"location,omitempty" db:"location"`
	Employment    string     `json:"employment,omitempty" db:"employment"`
	Salary        string     `json:"salary,omitempty" db:"salary"`
	Description   string     `json:"description,omitempty" db:"description"`
	Link          string     `json:"link,omitempty" db:"link"`
	DatePublished *time.Time `json:"date_published,omitempty" db:"date_published"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	// Embedding is nil until the backfill worker has processed the job.
	Embedding []float32 `json:"-" db:"-"`
}

// HasEmbedding reports whether the job can take part in semantic ranking.
func (j *Job) HasEmbedding() bool {
	return len(j.Embedding) > 0
}

// EmbeddingText builds the text the embedding of a job is computed from,
// combining the fields that carry meaning and skipping empty ones.
func (j *Job) EmbeddingText() string {
	parts := make([]string, 0, 8)
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("Title", j.JobTitle)
	add("Location", j.Location)
	add("Seniority", j.Seniority)
	add("Service", j.Service)
	add("Industry", j.Industry)
	add("Employment", j.Employment)
	add("Salary", j.Salary)
	add("Description", j.Description)

	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " | "
		}
		out += p
	}
	return out
}

// Firm represents the firm a job belongs to.
type Firm struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Link    string `json:"link,omitempty" db:"link"`
	Country string `json:"country,omitempty" db:"country"`
	Ranking *int   `json:"ranking,omitempty" db:"ranking"`
}
