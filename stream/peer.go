// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stream

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/Atharv226/CampusVote/models"
)

const writeWait = 10 * time.Second

// peer owns the write side of one connection. Frames are queued and written
// by a single goroutine, so a slow client fills its own queue and nothing
// else.
type peer struct {
	conn *websocket.Conn
	out  chan any
	done chan struct{}
	once sync.Once
}

func newPeer(conn *websocket.Conn, buffer int) *peer {
	return &peer{
		conn: conn,
		out:  make(chan any, buffer),
		done: make(chan struct{}),
	}
}

// Deliver implements broadcast.Sink. It never blocks.
func (p *peer) Deliver(ev models.Event) error {
	return p.enqueue(ev)
}

func (p *peer) reply(r Reply) {
	_ = p.enqueue(r)
}

func (p *peer) enqueue(v any) error {
	select {
	case <-p.done:
		return fmt.Errorf("%w: connection closed", models.ErrDeliveryFailed)
	default:
	}
	select {
	case p.out <- v:
		return nil
	default:
		return fmt.Errorf("%w: send buffer full", models.ErrDeliveryFailed)
	}
}

func (p *peer) writeLoop() {
	for {
		select {
		case v := <-p.out:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := websocket.JSON.Send(p.conn, v); err != nil {
				p.close()
				return
			}
		case <-p.done:
			return
		}
	}
}

// close stops the writer and closes the socket, which also unblocks the
// reader.
func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}
