package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a planned group journey with a shareable join code
type Trip struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	GroupBudget *float64  `json:"group_budget" db:"group_budget"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	TripCode    string    `json:"trip_code" db:"trip_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TripParticipant links a user to a trip they joined
type TripParticipant struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TripID   uuid.UUID `json:"trip_id" db:"trip_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
