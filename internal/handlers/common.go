package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/models"
	"tripvote-backend/internal/utils"
)

// isUniqueViolation reports whether err is a Postgres unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isParticipant reports whether userID has joined tripID
func isParticipant(ctx context.Context, db *pgxpool.Pool, tripID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM trip_participants WHERE trip_id = $1 AND user_id = $2)`,
		tripID, userID).Scan(&exists)
	return exists, err
}

// fetchTripForParticipant loads a trip only if userID is a participant.
// A missing trip and a trip the caller has not joined both return pgx.ErrNoRows
// so the API cannot leak which trips exist.
func fetchTripForParticipant(ctx context.Context, db *pgxpool.Pool, tripID, userID uuid.UUID) (models.Trip, error) {
	var t models.Trip
	err := db.QueryRow(ctx,
		`SELECT t.id, t.name, t.start_date, t.end_date, t.group_budget, t.created_by, t.trip_code, t.created_at
		   FROM trips t
		   JOIN trip_participants tp ON tp.trip_id = t.id
		  WHERE t.id = $1 AND tp.user_id = $2`,
		tripID, userID).Scan(
		&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.GroupBudget, &t.CreatedBy, &t.TripCode, &t.CreatedAt)
	return t, err
}

// fetchActivityForParticipant loads an activity scoped to its trip and the
// caller's membership; absent and unauthorized both come back as pgx.ErrNoRows.
func fetchActivityForParticipant(ctx context.Context, db *pgxpool.Pool, tripID, activityID, userID uuid.UUID) (models.Activity, error) {
	var a models.Activity
	err := db.QueryRow(ctx,
		`SELECT a.id, a.trip_id, a.title, a.date, a.time, a.category, a.estimated_cost, a.notes, a.created_by, a.created_at
		   FROM activities a
		   JOIN trip_participants tp ON tp.trip_id = a.trip_id
		  WHERE a.id = $1 AND a.trip_id = $2 AND tp.user_id = $3`,
		activityID, tripID, userID).Scan(
		&a.ID, &a.TripID, &a.Title, &a.Date, &a.Time, &a.Category, &a.EstimatedCost, &a.Notes, &a.CreatedBy, &a.CreatedAt)
	return a, err
}

// fetchParticipants loads a trip's roster with usernames and emails joined in
func fetchParticipants(ctx context.Context, db *pgxpool.Pool, tripID uuid.UUID) ([]dto.ParticipantResponse, error) {
	rows, err := db.Query(ctx,
		`SELECT tp.id, tp.user_id, u.username, u.email, tp.joined_at
		   FROM trip_participants tp
		   JOIN users u ON u.id = tp.user_id
		  WHERE tp.trip_id = $1
		  ORDER BY tp.joined_at`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]dto.ParticipantResponse, 0)
	for rows.Next() {
		var p models.TripParticipant
		var username, email string
		if err := rows.Scan(&p.ID, &p.UserID, &username, &email, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, dto.ParticipantResponse{
			ID:       p.ID.String(),
			User:     p.UserID.String(),
			Username: username,
			Email:    email,
			JoinedAt: utils.FormatTimestamp(p.JoinedAt),
		})
	}
	return participants, rows.Err()
}

// fetchVotes loads an activity's vote rows and derives the tallies.
// upvotes/downvotes are never stored; they are counted here on every read.
func fetchVotes(ctx context.Context, db *pgxpool.Pool, activityID uuid.UUID) ([]dto.VoteResponse, int, int, error) {
	rows, err := db.Query(ctx,
		`SELECT id, user_id, vote, voted_at
		   FROM activity_votes
		  WHERE activity_id = $1
		  ORDER BY voted_at`, activityID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	votes := make([]dto.VoteResponse, 0)
	upvotes, downvotes := 0, 0
	for rows.Next() {
		var v models.ActivityVote
		if err := rows.Scan(&v.ID, &v.UserID, &v.Vote, &v.VotedAt); err != nil {
			return nil, 0, 0, err
		}
		if v.Vote {
			upvotes++
		} else {
			downvotes++
		}
		votes = append(votes, dto.VoteResponse{
			ID:      v.ID.String(),
			User:    v.UserID.String(),
			Vote:    v.Vote,
			VotedAt: utils.FormatTimestamp(v.VotedAt),
		})
	}
	return votes, upvotes, downvotes, rows.Err()
}

// buildActivityResponse assembles one activity with its votes and tallies
func buildActivityResponse(ctx context.Context, db *pgxpool.Pool, a models.Activity) (dto.ActivityResponse, error) {
	votes, up, down, err := fetchVotes(ctx, db, a.ID)
	if err != nil {
		return dto.ActivityResponse{}, err
	}
	return dto.ActivityResponse{
		ID:            a.ID.String(),
		Trip:          a.TripID.String(),
		Title:         a.Title,
		Date:          utils.FormatDate(a.Date),
		Time:          a.Time,
		Category:      a.Category,
		EstimatedCost: a.EstimatedCost,
		Notes:         a.Notes,
		CreatedBy:     a.CreatedBy.String(),
		CreatedAt:     utils.FormatTimestamp(a.CreatedAt),
		Votes:         votes,
		Upvotes:       up,
		Downvotes:     down,
	}, nil
}

// fetchTripActivities loads a trip's activities ordered by date then time,
// each with votes and tallies
func fetchTripActivities(ctx context.Context, db *pgxpool.Pool, tripID uuid.UUID) ([]dto.ActivityResponse, error) {
	rows, err := db.Query(ctx,
		`SELECT id, trip_id, title, date, time, category, estimated_cost, notes, created_by, created_at
		   FROM activities
		  WHERE trip_id = $1
		  ORDER BY date, time NULLS LAST`, tripID)
	if err != nil {
		return nil, err
	}

	acts := make([]models.Activity, 0)
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.TripID, &a.Title, &a.Date, &a.Time, &a.Category, &a.EstimatedCost, &a.Notes, &a.CreatedBy, &a.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		acts = append(acts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(acts))
	for _, a := range acts {
		resp, err := buildActivityResponse(ctx, db, a)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// buildTripResponse assembles a trip with its nested participants and activities
func buildTripResponse(ctx context.Context, db *pgxpool.Pool, t models.Trip) (dto.TripResponse, error) {
	participants, err := fetchParticipants(ctx, db, t.ID)
	if err != nil {
		return dto.TripResponse{}, err
	}
	activities, err := fetchTripActivities(ctx, db, t.ID)
	if err != nil {
		return dto.TripResponse{}, err
	}
	return dto.TripResponse{
		ID:           t.ID.String(),
		Name:         t.Name,
		StartDate:    utils.FormatDate(t.StartDate),
		EndDate:      utils.FormatDate(t.EndDate),
		GroupBudget:  t.GroupBudget,
		CreatedBy:    t.CreatedBy.String(),
		CreatedAt:    utils.FormatTimestamp(t.CreatedAt),
		TripCode:     t.TripCode,
		Participants: participants,
		Activities:   activities,
	}, nil
}

// noRows reports whether err is the pgx no-rows sentinel
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
