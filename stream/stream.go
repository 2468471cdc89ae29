// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stream

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/Atharv226/CampusVote/auth"
	"github.com/Atharv226/CampusVote/broadcast"
	"github.com/Atharv226/CampusVote/middleware"
	"github.com/Atharv226/CampusVote/models"
	"github.com/Atharv226/CampusVote/registry"
)

const (
	defaultBuffer          = 64
	maxDecodeErrorsPerConn = 8
)

// Inbound frame types.
const (
	FrameJoinElection           = "join_election"
	FrameLeaveElection          = "leave_election"
	FrameSubscribeLiveResults   = "subscribe_live_results"
	FrameUnsubscribeLiveResults = "unsubscribe_live_results"
)

// Outbound control frame types. Events are sent as models.Event.
const (
	FrameConnected = "connected"
	FrameAck       = "ack"
	FrameError     = "error"
)

// Frame is a client request.
type Frame struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id,omitempty"`
	ElectionID string `json:"election_id,omitempty"`
}

// Reply acknowledges or rejects a client request, or greets a new
// connection.
type Reply struct {
	Type         string   `json:"type"`
	RequestID    string   `json:"request_id,omitempty"`
	ConnectionID string   `json:"connection_id,omitempty"`
	Channel      string   `json:"channel,omitempty"`
	Channels     []string `json:"channels,omitempty"`
	Code         string   `json:"code,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// Server accepts WebSocket connections from authenticated principals and
// attaches each one to the broadcaster.
type Server struct {
	registry    *registry.Registry
	broadcaster *broadcast.Broadcaster
	secret      []byte
	buffer      int
	logger      *slog.Logger
	ws          websocket.Handler
}

// NewServer returns a Server. buffer is the number of outbound frames
// queued per connection before deliveries start failing.
func NewServer(reg *registry.Registry, b *broadcast.Broadcaster, secret []byte, buffer int, logger *slog.Logger) *Server {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry:    reg,
		broadcaster: b,
		secret:      secret,
		buffer:      buffer,
		logger:      logger.With("module", "stream"),
	}
	s.ws = websocket.Handler(s.handle)
	return s
}

// ServeHTTP handles GET /ws. The token comes from the Authorization header
// or the token query parameter, since browsers cannot set headers on a
// WebSocket handshake.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		middleware.ErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	p, err := auth.ParsePrincipal(s.secret, auth.BearerToken(r))
	if err != nil {
		s.logger.Info("websocket unauthorized", "remote", r.RemoteAddr, "error", err)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	s.ws.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
}

func (s *Server) handle(conn *websocket.Conn) {
	p, ok := auth.PrincipalFromContext(conn.Request().Context())
	if !ok {
		conn.Close()
		return
	}

	connID := uuid.NewString()
	peer := newPeer(conn, s.buffer)
	go peer.writeLoop()

	s.registry.Register(connID, p)
	s.broadcaster.Attach(connID, peer)
	defer func() {
		s.broadcaster.Detach(connID)
		s.registry.Disconnect(connID)
		peer.close()
	}()

	var joined []string
	for _, ch := range []string{registry.UserChannel(p.UserID), registry.RoleChannel(p.Role)} {
		if err := s.registry.Join(connID, ch); err != nil {
			s.logger.Warn("auto-join failed", "connection_id", connID, "channel", ch, "error", err)
			continue
		}
		joined = append(joined, ch)
	}

	s.logger.Info("websocket connected", "connection_id", connID, "user_id", p.UserID, "role", p.Role)
	peer.reply(Reply{Type: FrameConnected, ConnectionID: connID, Channels: joined})

	decodeErrors := 0
	for {
		var frame Frame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if isDecodeError(err) {
				decodeErrors++
				peer.reply(errorReply("", "invalid_request", "invalid frame payload"))
				if decodeErrors >= maxDecodeErrorsPerConn {
					break
				}
				continue
			}
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("websocket read failed", "connection_id", connID, "error", err)
			}
			break
		}
		decodeErrors = 0
		s.dispatch(connID, peer, frame)
	}

	s.logger.Info("websocket disconnected", "connection_id", connID, "user_id", p.UserID)
}

func (s *Server) dispatch(connID string, peer *peer, frame Frame) {
	electionID := strings.TrimSpace(frame.ElectionID)

	var channel string
	switch frame.Type {
	case FrameJoinElection, FrameLeaveElection:
		channel = registry.ElectionChannel(electionID)
	case FrameSubscribeLiveResults, FrameUnsubscribeLiveResults:
		channel = registry.LiveResultsChannel(electionID)
	default:
		peer.reply(errorReply(frame.RequestID, "invalid_request", "unsupported frame type"))
		return
	}
	if electionID == "" {
		peer.reply(errorReply(frame.RequestID, "invalid_request", "election_id is required"))
		return
	}

	switch frame.Type {
	case FrameJoinElection, FrameSubscribeLiveResults:
		if err := s.registry.Join(connID, channel); err != nil {
			peer.reply(joinErrorReply(frame.RequestID, err))
			return
		}
	default:
		s.registry.Leave(connID, channel)
	}
	peer.reply(Reply{Type: FrameAck, RequestID: frame.RequestID, Channel: channel})
}

func joinErrorReply(requestID string, err error) Reply {
	switch {
	case errors.Is(err, models.ErrForbidden):
		return errorReply(requestID, "forbidden", err.Error())
	case errors.Is(err, models.ErrQuotaExceeded):
		return errorReply(requestID, "quota_exceeded", err.Error())
	default:
		return errorReply(requestID, "unavailable", err.Error())
	}
}

func errorReply(requestID, code, message string) Reply {
	return Reply{Type: FrameError, RequestID: requestID, Code: code, Message: message}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
