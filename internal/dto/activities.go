package dto

import (
	"strings"

	"tripvote-backend/internal/models"
)

// CreateActivityRequest represents the payload to propose an activity.
// Only title and date are required; category defaults to "OT".
type CreateActivityRequest struct {
	Title         string   `json:"title"`
	Date          string   `json:"date"` // YYYY-MM-DD
	Time          *string  `json:"time"` // HH:MM
	Category      string   `json:"category"`
	EstimatedCost *float64 `json:"estimated_cost"`
	Notes         *string  `json:"notes"`
}

// Validate returns field-level validation errors, empty when valid
func (r *CreateActivityRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = "This field is required."
	}
	if r.Date == "" {
		errs["date"] = "This field is required."
	}
	if r.Category != "" && !models.ValidCategory(r.Category) {
		errs["category"] = "Category must be one of AD, FD, ST, OT."
	}
	if r.EstimatedCost != nil && *r.EstimatedCost < 0 {
		errs["estimated_cost"] = "Cost cannot be negative."
	}
	return errs
}

// UpdateActivityRequest represents fields allowed to update an activity.
// All fields are optional; only provided ones will be updated.
type UpdateActivityRequest struct {
	Title         *string  `json:"title"`
	Date          *string  `json:"date"`
	Time          *string  `json:"time"`
	Category      *string  `json:"category"`
	EstimatedCost *float64 `json:"estimated_cost"`
	Notes         *string  `json:"notes"`
}

// VoteResponse represents one vote row in activity responses
type VoteResponse struct {
	ID      string `json:"id"`
	User    string `json:"user"`
	Vote    bool   `json:"vote"`
	VotedAt string `json:"voted_at"`
}

// ActivityResponse represents an activity with its votes and derived tallies
type ActivityResponse struct {
	ID            string         `json:"id"`
	Trip          string         `json:"trip"`
	Title         string         `json:"title"`
	Date          string         `json:"date"`
	Time          *string        `json:"time"`
	Category      string         `json:"category"`
	EstimatedCost *float64       `json:"estimated_cost"`
	Notes         string         `json:"notes"`
	CreatedBy     string         `json:"created_by"`
	CreatedAt     string         `json:"created_at"`
	Votes         []VoteResponse `json:"votes"`
	Upvotes       int            `json:"upvotes"`
	Downvotes     int            `json:"downvotes"`
}

// VoteRequest casts or replaces the caller's vote on an activity.
// Vote is a pointer so a missing field can be told apart from false.
type VoteRequest struct {
	Vote *bool `json:"vote"`
}
