package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

// Session is one live connection with its own document and VM. The
// document and VM are only touched from the session's event loop.
type Session struct {
	ID string

	server *Server
	conn   *websocket.Conn
	logger *slog.Logger
	doc    *dom.Document
	vm     *vbind.VM

	events chan ClientMessage

	// pending collects VM errors raised while a message is applied.
	pending []error

	writeMu   sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(srv *Server, conn *websocket.Conn) (*Session, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:     newSessionID(),
		server: srv,
		conn:   conn,
		events: make(chan ClientMessage, srv.config.EventQueueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.logger = srv.logger.With("session_id", s.ID)

	doc, vm, err := srv.build(srv.currentPage(), func(err error) {
		s.pending = append(s.pending, err)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	s.doc = doc
	s.vm = vm
	return s, nil
}

// VM returns the session's VM. It must only be used from the event loop.
func (s *Session) VM() *vbind.VM {
	return s.vm
}

// Start starts the read, heartbeat and event loops.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.HeartbeatLoop()
	go s.EventLoop()
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close closes the session and its connection. It is safe to call more
// than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
		s.conn.Close()
	})
}

// ReadLoop reads client messages and queues them for the event loop.
// It blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})

	for {
		s.extendReadDeadline()

		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		msg, err := DecodeClientMessage(raw)
		if err != nil {
			s.logger.Warn("invalid client message", "error", err)
			s.SendError(err)
			continue
		}

		select {
		case s.events <- msg:
		case <-s.done:
			return
		default:
			s.logger.Warn("event queue full", "type", msg.Type, "id", msg.ID)
			s.SendError(errors.New("E042"))
		}
	}
}

func (s *Session) extendReadDeadline() {
	if s.server.config.ReadTimeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.server.config.ReadTimeout))
	}
}

// HeartbeatLoop pings the client every HeartbeatInterval so idle sessions
// keep their read deadline moving. It runs until the session is closed.
func (s *Session) HeartbeatLoop() {
	ticker := time.NewTicker(s.server.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) sendPing() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return nil
	default:
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.server.config.WriteTimeout))
}

// EventLoop sends the initial render, then applies queued messages until
// the session closes.
func (s *Session) EventLoop() {
	s.render()
	for {
		select {
		case msg := <-s.events:
			s.handle(msg)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(msg ClientMessage) {
	eventType := msg.Event
	if msg.Type == TypeInput {
		eventType = TypeInput
	}

	_, span := s.server.config.Tracer.Start(s.ctx, "vbind.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("vbind.event.type", eventType),
			attribute.String("vbind.node.id", msg.ID),
			attribute.String("vbind.session_id", s.ID),
		))
	defer span.End()

	s.pending = s.pending[:0]
	changed, err := s.safeExecute(msg)
	errs := s.pending
	if err != nil {
		errs = append(errs, err)
	}

	for _, e := range errs {
		span.RecordError(e)
		s.SendError(e)
	}
	if len(errs) > 0 {
		span.SetStatus(codes.Error, errs[0].Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if changed {
		s.render()
	}
}

// safeExecute applies msg with panic recovery.
func (s *Session) safeExecute(msg ClientMessage) (changed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message panic",
				"panic", r,
				"type", msg.Type,
				"id", msg.ID,
				"stack", string(debug.Stack()))
			changed = true
			err = errors.New("E011").WithDetail(fmt.Sprint(r))
		}
	}()
	return s.apply(msg)
}

func (s *Session) apply(msg ClientMessage) (bool, error) {
	node, ok := s.doc.NodeByID(msg.ID)
	if !ok {
		return false, errors.New("E041").WithDetailf("no node %q", msg.ID)
	}

	switch msg.Type {
	case TypeInput:
		s.doc.Input(node, msg.Value)
		return true, nil
	case TypeEvent:
		return s.doc.Dispatch(node, msg.Event) > 0, nil
	}
	return false, errors.New("E040").WithDetailf("unknown message type %q", msg.Type)
}

func (s *Session) render() {
	body := s.doc.Body()
	if body == nil {
		body = s.doc.Root()
	}
	s.write(RenderMessage{Type: TypeRender, HTML: body.InnerHTML()})
}

// SendReload tells the browser to load the page again.
func (s *Session) SendReload() {
	s.write(ReloadMessage{Type: TypeReload})
}

// SendError reports err to the browser.
func (s *Session) SendError(err error) {
	s.write(newErrorMessage(err))
}

func (s *Session) write(v any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}

	if s.server.config.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout))
	}
	if err := s.conn.WriteJSON(v); err != nil {
		s.logger.Debug("write failed", "error", err)
		go s.Close()
	}
}
