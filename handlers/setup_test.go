// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Atharv226/CampusVote/admission"
	"github.com/Atharv226/CampusVote/broadcast"
	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/electorate"
	"github.com/Atharv226/CampusVote/ledger"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/milestone"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
	"github.com/Atharv226/CampusVote/tally"
	"github.com/Atharv226/CampusVote/testutil"
)

var secret = []byte(testutil.TestJWTSecret)

// testStack wires every component against a fresh test database.
type testStack struct {
	store       *db.Store
	tally       *tally.Store
	registry    *registry.Registry
	broadcaster *broadcast.Broadcaster
	controller  *admission.Controller

	voting        *VotingHandler
	results       *ResultsHandler
	notifications *NotificationHandler
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	store := testutil.SetupTestStore(t)
	ts := tally.New(store)
	dir := electorate.New(store)
	det, err := milestone.New(store, ts, dir, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	reg := registry.New(0)
	b := broadcast.New(reg, nil)
	ctrl := admission.New(admission.Config{
		Store:       store,
		Ledger:      ledger.New(store),
		Tally:       ts,
		Electorate:  dir,
		Detector:    det,
		Broadcaster: b,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ctrl.Close(ctx)
	})

	return &testStack{
		store:         store,
		tally:         ts,
		registry:      reg,
		broadcaster:   b,
		controller:    ctrl,
		voting:        NewVotingHandler(ctrl),
		results:       NewResultsHandler(store, ts, dir, det),
		notifications: NewNotificationHandler(store, dir, b),
	}
}

// observe registers a connection for p, attaches a recording sink, and joins
// the given channels.
func (s *testStack) observe(t *testing.T, connID string, p models.Principal, channels ...string) *testutil.RecordingSink {
	t.Helper()
	s.registry.Register(connID, p)
	sink := &testutil.RecordingSink{}
	s.broadcaster.Attach(connID, sink)
	for _, ch := range channels {
		if err := s.registry.Join(connID, ch); err != nil {
			t.Fatal(err)
		}
	}
	return sink
}

func (s *testStack) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.controller.Drain(ctx); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
}

// castVote sends POST /elections/{id}/votes as voter through the auth
// middleware.
func (s *testStack) castVote(t *testing.T, voter models.Principal, electionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/votes", body, testutil.AuthHeader(t, voter))
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	middleware.RequirePrincipal(secret, s.voting.CastVote)(w, req)
	return w
}

func asAdmin(t *testing.T, s *testStack, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	admin := testutil.CreateTestAdmin(t, s.store)
	for k, v := range testutil.AuthHeader(t, admin) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	middleware.RequireRole(secret, models.RoleAdmin, h)(w, req)
	return w
}
