// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Atharv226/CampusVote/models"
)

// Channel name prefixes.
const (
	userPrefix        = "user_"
	rolePrefix        = "role_"
	electionPrefix    = "election_"
	liveResultsPrefix = "live_results_"
)

func UserChannel(userID string) string         { return userPrefix + userID }
func RoleChannel(role string) string           { return rolePrefix + role }
func ElectionChannel(electionID string) string { return electionPrefix + electionID }
func LiveResultsChannel(electionID string) string {
	return liveResultsPrefix + electionID
}

// Authorize checks whether p may join channel. The decision uses the
// principal's registered role and user ID, never anything in the channel
// request itself.
func Authorize(p models.Principal, channel string) error {
	switch {
	case strings.HasPrefix(channel, liveResultsPrefix):
		if p.Role != models.RoleAdmin {
			return fmt.Errorf("%w: live results require the admin role", models.ErrForbidden)
		}
	case strings.HasPrefix(channel, userPrefix):
		if channel != UserChannel(p.UserID) {
			return fmt.Errorf("%w: cannot join another user's channel", models.ErrForbidden)
		}
	case strings.HasPrefix(channel, rolePrefix):
		if channel != RoleChannel(p.Role) {
			return fmt.Errorf("%w: cannot join another role's channel", models.ErrForbidden)
		}
	case strings.HasPrefix(channel, electionPrefix):
		if len(channel) == len(electionPrefix) {
			return fmt.Errorf("%w: election id required", models.ErrForbidden)
		}
	default:
		return fmt.Errorf("%w: unknown channel %q", models.ErrForbidden, channel)
	}
	return nil
}

type connection struct {
	principal models.Principal
	channels  map[string]struct{}
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Connections int            `json:"connections"`
	Channels    map[string]int `json:"channels"`
}

// Registry maps live connections to the channels they joined. All
// operations are idempotent and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*connection
	channels map[string]map[string]struct{}
	quota    int
}

// New returns a Registry limiting each connection to quota channels. A quota
// of zero means unlimited.
func New(quota int) *Registry {
	return &Registry{
		conns:    make(map[string]*connection),
		channels: make(map[string]map[string]struct{}),
		quota:    quota,
	}
}

// Register records the authenticated principal for connID. Registering an
// existing connection again keeps the original principal.
func (r *Registry) Register(connID string, p models.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[connID]; ok {
		return
	}
	r.conns[connID] = &connection{principal: p, channels: make(map[string]struct{})}
}

// Principal returns the principal registered for connID.
func (r *Registry) Principal(connID string) (models.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok {
		return models.Principal{}, false
	}
	return c.principal, true
}

// Join adds connID to channel after checking access rules.
func (r *Registry) Join(connID, channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownConnection, connID)
	}
	if err := Authorize(c.principal, channel); err != nil {
		return err
	}
	if _, joined := c.channels[channel]; joined {
		return nil
	}
	if r.quota > 0 && len(c.channels) >= r.quota {
		return fmt.Errorf("%w: limit is %d", models.ErrQuotaExceeded, r.quota)
	}

	c.channels[channel] = struct{}{}
	members, ok := r.channels[channel]
	if !ok {
		members = make(map[string]struct{})
		r.channels[channel] = members
	}
	members[connID] = struct{}{}
	return nil
}

// Leave removes connID from channel. Leaving a channel never joined, or
// from an unknown connection, is a no-op.
func (r *Registry) Leave(connID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(c.channels, channel)
	r.removeMember(channel, connID)
}

// Resolve returns the connections currently joined to channel, sorted.
func (r *Registry) Resolve(channel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.channels[channel]))
}

// Channels returns the channels connID has joined, sorted.
func (r *Registry) Channels(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(c.channels))
}

// Disconnect removes connID and every membership it holds in one step.
// It returns the channels that were left.
func (r *Registry) Disconnect(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	left := slices.Sorted(maps.Keys(c.channels))
	for _, channel := range left {
		r.removeMember(channel, connID)
	}
	delete(r.conns, connID)
	return left
}

// Stats reports connection and per-channel member counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{Connections: len(r.conns), Channels: make(map[string]int, len(r.channels))}
	for channel, members := range r.channels {
		s.Channels[channel] = len(members)
	}
	return s
}

// removeMember must be called with mu held.
func (r *Registry) removeMember(channel, connID string) {
	members, ok := r.channels[channel]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.channels, channel)
	}
}
