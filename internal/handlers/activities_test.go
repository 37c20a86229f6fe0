package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"tripvote-backend/internal/dto"
	"tripvote-backend/internal/testutil"
)

func TestCreateActivity(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewActivitiesHandler(pool)

	alice := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")
	mallory := testutil.CreateTestUser(t, pool, "mallory@example.com", "mallory", "secret1")
	tripID := testutil.CreateTestTrip(t, pool, alice, "Beach Week", "BEACH026")

	create := func(caller uuid.UUID, email string, body interface{}) *httptest.ResponseRecorder {
		req := authedRequest(t, http.MethodPost, "/api/trips/"+tripID.String()+"/activities", body, caller, email)
		req.SetPathValue("trip_id", tripID.String())
		rec := httptest.NewRecorder()
		handler.CreateActivity(rec, req)
		return rec
	}

	t.Run("defaults category to OT", func(t *testing.T) {
		rec := create(alice, "alice@example.com",
			dto.CreateActivityRequest{Title: "Snorkeling", Date: "2026-06-03"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp dto.ActivityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Category != "OT" {
			t.Errorf("category = %q, want OT", resp.Category)
		}
		if resp.Upvotes != 0 || resp.Downvotes != 0 || len(resp.Votes) != 0 {
			t.Errorf("new activity has votes: %+v", resp)
		}
	})

	t.Run("normalizes time with seconds", func(t *testing.T) {
		clock := "18:30:45"
		rec := create(alice, "alice@example.com",
			dto.CreateActivityRequest{Title: "Dinner", Date: "2026-06-03", Time: &clock, Category: "FD"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp dto.ActivityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Time == nil || *resp.Time != "18:30" {
			t.Errorf("time = %v, want 18:30", resp.Time)
		}
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		rec := create(alice, "alice@example.com",
			dto.CreateActivityRequest{Title: "Mystery", Date: "2026-06-03", Category: "ZZ"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
	})

	t.Run("missing date rejected", func(t *testing.T) {
		rec := create(alice, "alice@example.com", dto.CreateActivityRequest{Title: "No date"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
	})

	t.Run("non-participant gets 404", func(t *testing.T) {
		rec := create(mallory, "mallory@example.com",
			dto.CreateActivityRequest{Title: "Crash the party", Date: "2026-06-03"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
	})
}

func TestVoteUpsert(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewActivitiesHandler(pool)

	alice := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")
	bob := testutil.CreateTestUser(t, pool, "bob@example.com", "bob", "secret1")
	tripID := testutil.CreateTestTrip(t, pool, alice, "Beach Week", "BEACH026")
	testutil.AddParticipant(t, pool, tripID, bob)
	activityID := testutil.CreateTestActivity(t, pool, tripID, alice, "Snorkeling")

	vote := func(caller uuid.UUID, email string, value *bool) *httptest.ResponseRecorder {
		path := "/api/trips/" + tripID.String() + "/activities/" + activityID.String() + "/vote"
		req := authedRequest(t, http.MethodPost, path, dto.VoteRequest{Vote: value}, caller, email)
		req.SetPathValue("trip_id", tripID.String())
		req.SetPathValue("activity_id", activityID.String())
		rec := httptest.NewRecorder()
		handler.Vote(rec, req)
		return rec
	}

	yes, no := true, false

	if rec := vote(alice, "alice@example.com", &yes); rec.Code != http.StatusCreated {
		t.Fatalf("first vote: status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec := vote(bob, "bob@example.com", &no); rec.Code != http.StatusCreated {
		t.Fatalf("bob's vote: status = %d, body = %s", rec.Code, rec.Body)
	}

	// Re-voting replaces, never duplicates.
	if rec := vote(alice, "alice@example.com", &no); rec.Code != http.StatusCreated {
		t.Fatalf("changed vote: status = %d, body = %s", rec.Code, rec.Body)
	}

	var rows int
	if err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM activity_votes WHERE activity_id = $1`, activityID).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Errorf("vote rows = %d, want 2", rows)
	}

	// Tallies are derived from current rows at read time.
	req := authedRequest(t, http.MethodGet,
		"/api/trips/"+tripID.String()+"/activities/"+activityID.String(), nil, alice, "alice@example.com")
	req.SetPathValue("trip_id", tripID.String())
	req.SetPathValue("activity_id", activityID.String())
	rec := httptest.NewRecorder()
	handler.GetActivity(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get activity: status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp dto.ActivityResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Upvotes != 0 || resp.Downvotes != 2 {
		t.Errorf("tallies = %d up / %d down, want 0/2", resp.Upvotes, resp.Downvotes)
	}
	if len(resp.Votes) != 2 {
		t.Errorf("votes = %d rows, want 2", len(resp.Votes))
	}

	t.Run("missing vote field", func(t *testing.T) {
		rec := vote(alice, "alice@example.com", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp dto.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if _, ok := resp.Errors["vote"]; !ok {
			t.Errorf("expected vote field error, got %+v", resp)
		}
	})

	t.Run("non-participant gets 404", func(t *testing.T) {
		mallory := testutil.CreateTestUser(t, pool, "mallory@example.com", "mallory", "secret1")
		rec := vote(mallory, "mallory@example.com", &yes)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
	})
}

func TestUpdateAndDeleteActivity(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewActivitiesHandler(pool)

	alice := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")
	tripID := testutil.CreateTestTrip(t, pool, alice, "Beach Week", "BEACH026")
	activityID := testutil.CreateTestActivity(t, pool, tripID, alice, "Snorkeling")

	withPath := func(req *http.Request) *http.Request {
		req.SetPathValue("trip_id", tripID.String())
		req.SetPathValue("activity_id", activityID.String())
		return req
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		title := "Night Snorkeling"
		req := withPath(authedRequest(t, http.MethodPut,
			"/api/trips/"+tripID.String()+"/activities/"+activityID.String(),
			dto.UpdateActivityRequest{Title: &title}, alice, "alice@example.com"))
		rec := httptest.NewRecorder()
		handler.UpdateActivity(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp dto.ActivityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Title != "Night Snorkeling" {
			t.Errorf("title = %q", resp.Title)
		}
		if resp.Date != "2026-06-03" || resp.Category != "OT" {
			t.Errorf("untouched fields changed: %+v", resp)
		}
	})

	t.Run("clearing time", func(t *testing.T) {
		empty := ""
		req := withPath(authedRequest(t, http.MethodPut,
			"/api/trips/"+tripID.String()+"/activities/"+activityID.String(),
			dto.UpdateActivityRequest{Time: &empty}, alice, "alice@example.com"))
		rec := httptest.NewRecorder()
		handler.UpdateActivity(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp dto.ActivityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Time != nil {
			t.Errorf("time = %v, want null", resp.Time)
		}
	})

	t.Run("delete cascades votes", func(t *testing.T) {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO activity_votes (id, activity_id, user_id, vote) VALUES ($1, $2, $3, true)`,
			uuid.New(), activityID, alice)
		if err != nil {
			t.Fatalf("seed vote: %v", err)
		}

		req := withPath(authedRequest(t, http.MethodDelete,
			"/api/trips/"+tripID.String()+"/activities/"+activityID.String(), nil, alice, "alice@example.com"))
		rec := httptest.NewRecorder()
		handler.DeleteActivity(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var votes int
		if err := pool.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM activity_votes WHERE activity_id = $1`, activityID).Scan(&votes); err != nil {
			t.Fatal(err)
		}
		if votes != 0 {
			t.Errorf("votes survived activity delete: %d", votes)
		}
	})
}

func TestListActivitiesOrdering(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	handler := NewActivitiesHandler(pool)

	alice := testutil.CreateTestUser(t, pool, "alice@example.com", "alice", "secret1")
	tripID := testutil.CreateTestTrip(t, pool, alice, "Beach Week", "BEACH026")

	seed := func(title, date string, clock *string) {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO activities (id, trip_id, title, date, time, category, created_by)
			 VALUES ($1, $2, $3, $4, $5, 'OT', $6)`,
			uuid.New(), tripID, title, date, clock, alice)
		if err != nil {
			t.Fatalf("seed activity: %v", err)
		}
	}
	morning, evening := "09:00", "19:00"
	seed("Late hike", "2026-06-05", nil)
	seed("Dinner", "2026-06-03", &evening)
	seed("Breakfast", "2026-06-03", &morning)

	req := authedRequest(t, http.MethodGet, "/api/trips/"+tripID.String()+"/activities", nil, alice, "alice@example.com")
	req.SetPathValue("trip_id", tripID.String())
	rec := httptest.NewRecorder()
	handler.ListActivities(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp []dto.ActivityResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 3 {
		t.Fatalf("got %d activities, want 3", len(resp))
	}
	want := []string{"Breakfast", "Dinner", "Late hike"}
	for i, w := range want {
		if resp[i].Title != w {
			t.Errorf("position %d = %q, want %q", i, resp[i].Title, w)
		}
	}
}
