package dto

import "strings"

// CreateTripRequest represents the payload to create a trip.
// TripCode is optional; the server generates one if omitted.
type CreateTripRequest struct {
	Name        string   `json:"name"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	EndDate     string   `json:"end_date"`   // YYYY-MM-DD
	GroupBudget *float64 `json:"group_budget"`
	TripCode    string   `json:"trip_code"`
}

// Validate returns field-level validation errors, empty when valid
func (r *CreateTripRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "This field is required."
	}
	if r.StartDate == "" {
		errs["start_date"] = "This field is required."
	}
	if r.EndDate == "" {
		errs["end_date"] = "This field is required."
	}
	if r.GroupBudget != nil && *r.GroupBudget < 0 {
		errs["group_budget"] = "Budget cannot be negative."
	}
	if r.TripCode != "" && len(r.TripCode) > 8 {
		errs["trip_code"] = "Trip code must be at most 8 characters."
	}
	return errs
}

// UpdateTripRequest represents fields allowed to update a trip.
// All fields are optional; only provided ones will be updated.
// created_by and trip_code are immutable after creation.
type UpdateTripRequest struct {
	Name        *string  `json:"name"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	GroupBudget *float64 `json:"group_budget"`
}

// ParticipantResponse represents one trip participant in responses
type ParticipantResponse struct {
	ID       string `json:"id"`
	User     string `json:"user"`
	Username string `json:"username"`
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
}

// TripResponse represents a trip with its nested participants and activities
type TripResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	GroupBudget  *float64             `json:"group_budget"`
	CreatedBy    string               `json:"created_by"`
	CreatedAt    string               `json:"created_at"`
	TripCode     string               `json:"trip_code"`
	Participants []ParticipantResponse `json:"participants"`
	Activities   []ActivityResponse    `json:"activities"`
}

// InviteUserRequest adds a known user to a trip by email
type InviteUserRequest struct {
	Email string `json:"email"`
}

// JoinTripRequest joins the caller to a trip by its shareable code
type JoinTripRequest struct {
	TripCode string `json:"trip_code"`
}
