// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
)

// Sink delivers events to one connection. Deliver must not block; a sink
// that cannot accept an event returns an error wrapping
// models.ErrDeliveryFailed.
type Sink interface {
	Deliver(ev models.Event) error
}

// Stats counts delivery outcomes since start.
type Stats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Stale     int64 `json:"stale"`
}

// Broadcaster fans events out to every connection joined to a channel.
// Delivery is best effort and at most once. A nil *Broadcaster is valid and
// drops every event.
type Broadcaster struct {
	registry *registry.Registry
	logger   *slog.Logger

	mu    sync.RWMutex
	sinks map[string]Sink

	chMu     sync.Mutex
	channels map[string]*channelState

	delivered atomic.Int64
	failed    atomic.Int64
	stale     atomic.Int64
}

// channelState serializes publishes on one channel and remembers the
// highest sequence sent per event kind.
type channelState struct {
	mu      sync.Mutex
	lastSeq map[models.EventKind]int64
}

// New returns a Broadcaster resolving channels through reg. A nil logger
// uses slog.Default.
func New(reg *registry.Registry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		registry: reg,
		logger:   logger,
		sinks:    make(map[string]Sink),
		channels: make(map[string]*channelState),
	}
}

// Attach routes events for connID to s, replacing any previous sink.
func (b *Broadcaster) Attach(connID string, s Sink) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks[connID] = s
}

// Detach stops routing events to connID.
func (b *Broadcaster) Detach(connID string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sinks, connID)
}

// Publish sends ev to every connection currently joined to channel and
// returns how many accepted it. Each delivery is independent: one failing
// or slow sink never affects the others, and failures are only logged.
//
// Events with a non-zero Seq lower than one already published on the
// channel for the same kind are dropped, so observers never see a tally go
// backwards.
func (b *Broadcaster) Publish(ctx context.Context, channel string, ev models.Event) int {
	if b == nil {
		return 0
	}
	ev.Channel = channel

	state := b.channelState(channel)
	state.mu.Lock()
	defer state.mu.Unlock()

	if ev.Seq > 0 {
		if ev.Seq < state.lastSeq[ev.Kind] {
			b.stale.Add(1)
			b.logger.Debug("dropping stale event", "channel", channel, "type", ev.Kind, "seq", ev.Seq, "last_seq", state.lastSeq[ev.Kind])
			return 0
		}
		state.lastSeq[ev.Kind] = ev.Seq
	}

	delivered := 0
	for _, connID := range b.registry.Resolve(channel) {
		if ctx.Err() != nil {
			break
		}
		if err := b.deliver(connID, ev); err != nil {
			b.failed.Add(1)
			b.logger.Debug("event delivery failed", "channel", channel, "type", ev.Kind, "connection_id", connID, "error", err)
			continue
		}
		delivered++
	}
	b.delivered.Add(int64(delivered))
	return delivered
}

// Stats returns delivery counters. It is safe on a nil Broadcaster.
func (b *Broadcaster) Stats() Stats {
	if b == nil {
		return Stats{}
	}
	return Stats{Delivered: b.delivered.Load(), Failed: b.failed.Load(), Stale: b.stale.Load()}
}

func (b *Broadcaster) deliver(connID string, ev models.Event) error {
	b.mu.RLock()
	s, ok := b.sinks[connID]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: no sink attached for %s", models.ErrDeliveryFailed, connID)
	}
	if err := s.Deliver(ev); err != nil {
		if errors.Is(err, models.ErrDeliveryFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", models.ErrDeliveryFailed, err)
	}
	return nil
}

func (b *Broadcaster) channelState(channel string) *channelState {
	b.chMu.Lock()
	defer b.chMu.Unlock()
	s, ok := b.channels[channel]
	if !ok {
		s = &channelState{lastSeq: make(map[models.EventKind]int64)}
		b.channels[channel] = s
	}
	return s
}
