package entities

import "time"

// UserProfile holds per-user state for the CV matching path. CV text
// arrives already extracted from the uploaded document; the engine never
// parses files itself.
type UserProfile struct {
	TelegramID  int64     `json:"telegram_id" db:"telegram_id"`
	Username    string    `json:"username,omitempty" db:"username"`
	FirstName   string    `json:"first_name,omitempty" db:"first_name"`
	LastName    string    `json:"last_name,omitempty" db:"last_name"`
	CVText      string    `json:"cv_text,omitempty" db:"cv_text"`
	CVEmbedding []float32 `json:"-" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasCV reports whether a CV embedding is stored for the user.
func (u *UserProfile) HasCV() bool {
	return len(u.CVEmbedding) > 0
}
