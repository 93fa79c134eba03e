package models

import "time"

// NoteExpiry is how long an owner-posted note stays visible.
const NoteExpiry = 12 * time.Hour

// Canteen statuses
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Canteen represents a single food stall on the status board
type Canteen struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Icon          string     `db:"icon" json:"icon"`
	Status        string     `db:"status" json:"status"`
	LastUpdated   time.Time  `db:"last_updated" json:"lastUpdated"`
	PIN           string     `db:"pin" json:"-"`
	Note          *string    `db:"note" json:"note,omitempty"`
	NoteUpdatedAt *time.Time `db:"note_updated_at" json:"noteUpdatedAt,omitempty"`
}

// NoteExpired reports whether the canteen's note is stale and should be hidden.
func (c *Canteen) NoteExpired(now time.Time) bool {
	if c.NoteUpdatedAt == nil {
		return true
	}
	return now.Sub(*c.NoteUpdatedAt) > NoteExpiry
}

// Public returns a copy safe for student-facing responses: the PIN is
// stripped and an expired note is dropped.
func (c *Canteen) Public(now time.Time) Canteen {
	out := *c
	out.PIN = ""
	if out.Note != nil && c.NoteExpired(now) {
		out.Note = nil
		out.NoteUpdatedAt = nil
	}
	return out
}

// AdminCanteenPIN is the admin console's view of a canteen credential
type AdminCanteenPIN struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	PIN  string `json:"pin"`
}
