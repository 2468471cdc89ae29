// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/Atharv226/CampusVote/admission"
	"github.com/Atharv226/CampusVote/broadcast"
	"github.com/Atharv226/CampusVote/cliparse"
	"github.com/Atharv226/CampusVote/db"
	"github.com/Atharv226/CampusVote/electorate"
	"github.com/Atharv226/CampusVote/handlers"
	"github.com/Atharv226/CampusVote/ledger"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/milestone"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
	"github.com/Atharv226/CampusVote/stream"
	"github.com/Atharv226/CampusVote/tally"
)

// Components holds the long-lived services behind the routes.
type Components struct {
	Store       *db.Store
	Tally       *tally.Store
	Electorate  *electorate.Directory
	Detector    *milestone.Detector
	Registry    *registry.Registry
	Broadcaster *broadcast.Broadcaster
	Controller  *admission.Controller
}

// NewComponents wires every service against store.
func NewComponents(store *db.Store, cfg cliparse.Config, logger *slog.Logger) (*Components, error) {
	ts := tally.New(store)
	dir := electorate.New(store)
	det, err := milestone.New(store, ts, dir, cfg.Milestones, logger)
	if err != nil {
		return nil, err
	}
	reg := registry.New(cfg.ChannelQuota)
	b := broadcast.New(reg, logger)

	return &Components{
		Store:       store,
		Tally:       ts,
		Electorate:  dir,
		Detector:    det,
		Registry:    reg,
		Broadcaster: b,
		Controller: admission.New(admission.Config{
			Store:              store,
			Ledger:             ledger.New(store),
			Tally:              ts,
			Electorate:         dir,
			Detector:           det,
			Broadcaster:        b,
			Logger:             logger,
			PropagationTimeout: cfg.PropagationTimeout,
		}),
	}, nil
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string          `json:"status"`
	Registry registry.Stats  `json:"registry"`
	Delivery broadcast.Stats `json:"delivery"`
}

func NewRouter(c *Components, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()
	secret := []byte(cfg.JWTSecret)

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(c.Controller)
	resultsHandler := handlers.NewResultsHandler(c.Store, c.Tally, c.Electorate, c.Detector)
	notificationHandler := handlers.NewNotificationHandler(c.Store, c.Electorate, c.Broadcaster)
	streamServer := stream.NewServer(c.Registry, c.Broadcaster, secret, cfg.ConnectionBuffer, nil)

	// Health check with observer metrics
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Registry: c.Registry.Stats(),
			Delivery: c.Broadcaster.Stats(),
		})
	})

	// Voting (authenticated voters)
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(middleware.RequirePrincipal(secret, votingHandler.CastVote)))

	// Results
	mux.HandleFunc("GET /elections/{id}/tally", middleware.WithLogging(resultsHandler.GetTally))
	mux.HandleFunc("POST /elections/{id}/tally/reconcile", middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, resultsHandler.Reconcile)))

	// Lifecycle notifications from admin services
	mux.HandleFunc("POST /notifications/election-status", middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, notificationHandler.ElectionStatusChanged)))
	mux.HandleFunc("POST /notifications/candidate-approved", middleware.WithLogging(middleware.RequireRole(secret, models.RoleAdmin, notificationHandler.CandidateApproved)))

	// Live events
	mux.Handle("GET /ws", streamServer)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("CampusVote API v1"))
	})

	return mux
}
