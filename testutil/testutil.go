// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Atharv226/CampusVote/auth"
	"github.com/Atharv226/CampusVote/cliparse"
	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/models"
)

// TestJWTSecret signs tokens minted by TestToken.
const TestJWTSecret = "test-jwt-secret"

// approvalClock hands out strictly increasing approval times so tie-break
// order is deterministic.
var approvalClock atomic.Int64

// SetupTestStore creates a fresh test database with the full schema.
// It uses SQLite in a temp dir unless TEST_DATABASE_URL points at Postgres.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()

	dbType, dsn := db.TypeSQLite, "file:"+filepath.Join(t.TempDir(), "campusvote_test.db")
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		dbType, dsn = db.TypePostgres, url
	}

	store, err := db.Open(ctx, dbType, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if store.Postgres() {
		if err := db.DropSchema(ctx, store); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}
	if err := db.CreateSchema(ctx, store); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file::memory:",
		DatabaseType:       db.TypeSQLite,
		JWTSecret:          TestJWTSecret,
		Milestones:         []int{25, 50, 75, 100},
		ConnectionBuffer:   16,
		ChannelQuota:       8,
		PropagationTimeout: 5 * time.Second,
	}
}

// CreateTestElection inserts an election and returns its ID.
func CreateTestElection(t *testing.T, s *db.Store, status string, elig models.Eligibility, positions ...string) string {
	t.Helper()

	id := uuid.NewString()
	exec(t, s, `INSERT INTO election (id, title, status) VALUES (?, ?, ?)`, id, "Student Council "+id[:8], status)
	for _, b := range elig.Branches {
		exec(t, s, `INSERT INTO election_branch (election_id, branch) VALUES (?, ?)`, id, b)
	}
	for _, y := range elig.Years {
		exec(t, s, `INSERT INTO election_year (election_id, year) VALUES (?, ?)`, id, y)
	}
	for _, p := range positions {
		exec(t, s, `INSERT INTO election_position (election_id, position) VALUES (?, ?)`, id, p)
	}
	return id
}

// SetElectionStatus changes an election's status the way the lifecycle
// service would.
func SetElectionStatus(t *testing.T, s *db.Store, electionID, status string) {
	t.Helper()
	exec(t, s, `UPDATE election SET status = ? WHERE id = ?`, status, electionID)
}

// AddTestCandidate inserts a candidate slot owned by a new candidate user.
func AddTestCandidate(t *testing.T, s *db.Store, electionID, position, name string, approved bool) models.CandidateSlot {
	t.Helper()

	c := models.CandidateSlot{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Position:   position,
		UserID:     uuid.NewString(),
		Name:       name,
		Approved:   approved,
	}
	var approvedAt *time.Time
	if approved {
		at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(approvalClock.Add(1)) * time.Second)
		approvedAt = &at
		c.ApprovedAt = &at
	}

	exec(t, s, `INSERT INTO voter (id, name, role) VALUES (?, ?, ?)`, c.UserID, name, models.RoleCandidate)
	exec(t, s, `
		INSERT INTO candidate_slot (id, election_id, position, user_id, name, approved, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, electionID, position, c.UserID, name, approved, approvedAt)
	return c
}

// ApproveTestCandidate marks an existing slot approved.
func ApproveTestCandidate(t *testing.T, s *db.Store, candidateID string) {
	t.Helper()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(approvalClock.Add(1)) * time.Second)
	exec(t, s, `UPDATE candidate_slot SET approved = TRUE, approved_at = ? WHERE id = ?`, at, candidateID)
}

// CreateTestVoter registers an active voter and returns its principal.
func CreateTestVoter(t *testing.T, s *db.Store, branch string, year int) models.Principal {
	t.Helper()
	p := models.Principal{UserID: uuid.NewString(), Role: models.RoleVoter, Branch: branch, Year: year}
	exec(t, s, `INSERT INTO voter (id, name, role, branch, year) VALUES (?, ?, ?, ?, ?)`,
		p.UserID, "Voter "+p.UserID[:8], p.Role, branch, year)
	return p
}

// CreateTestVoters registers n active voters with the same branch and year.
func CreateTestVoters(t *testing.T, s *db.Store, n int, branch string, year int) []models.Principal {
	t.Helper()
	out := make([]models.Principal, n)
	for i := range out {
		out[i] = CreateTestVoter(t, s, branch, year)
	}
	return out
}

// CreateTestAdmin registers an admin user and returns its principal.
func CreateTestAdmin(t *testing.T, s *db.Store) models.Principal {
	t.Helper()
	p := models.Principal{UserID: uuid.NewString(), Role: models.RoleAdmin}
	exec(t, s, `INSERT INTO voter (id, name, role) VALUES (?, ?, ?)`, p.UserID, "Admin", p.Role)
	return p
}

// TestToken signs a bearer token for p with TestJWTSecret.
func TestToken(t *testing.T, p models.Principal) string {
	t.Helper()
	token, err := auth.SignPrincipal([]byte(TestJWTSecret), p, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// AuthHeader returns an Authorization header map for MakeRequest.
func AuthHeader(t *testing.T, p models.Principal) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + TestToken(t, p)}
}

func exec(t *testing.T, s *db.Store, query string, args ...any) {
	t.Helper()
	if _, err := s.DB.ExecContext(context.Background(), s.Rebind(query), args...); err != nil {
		t.Fatalf("Failed to seed test data: %v\n%s", err, query)
	}
}

// RecordingSink collects delivered events. Set Fail to make every delivery
// fail with models.ErrDeliveryFailed.
type RecordingSink struct {
	mu     sync.Mutex
	events []models.Event
	Fail   bool
}

func (r *RecordingSink) Deliver(ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return models.ErrDeliveryFailed
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything delivered so far.
func (r *RecordingSink) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// OfKind returns delivered events of the given kind, in delivery order.
func (r *RecordingSink) OfKind(kind models.EventKind) []models.Event {
	var out []models.Event
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
