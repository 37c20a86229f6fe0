package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity categories, stored as two-letter codes
const (
	CategoryAdventure   = "AD"
	CategoryFood        = "FD"
	CategorySightseeing = "ST"
	CategoryOther       = "OT"
)

// ValidCategory reports whether code is one of the known category codes
func ValidCategory(code string) bool {
	switch code {
	case CategoryAdventure, CategoryFood, CategorySightseeing, CategoryOther:
		return true
	}
	return false
}

// Activity represents a proposed event within a trip, open to voting
type Activity struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TripID        uuid.UUID `json:"trip_id" db:"trip_id"`
	Title         string    `json:"title" db:"title"`
	Date          time.Time `json:"date" db:"date"`
	Time          *string   `json:"time" db:"time"` // "HH:MM"
	Category      string    `json:"category" db:"category"`
	EstimatedCost *float64  `json:"estimated_cost" db:"estimated_cost"`
	Notes         string    `json:"notes" db:"notes"`
	CreatedBy     uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ActivityVote is one user's up/down vote on an activity
type ActivityVote struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ActivityID uuid.UUID `json:"activity_id" db:"activity_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Vote       bool      `json:"vote" db:"vote"` // true for upvote, false for downvote
	VotedAt    time.Time `json:"voted_at" db:"voted_at"`
}
