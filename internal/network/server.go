package network

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/amalg/go-mazewalk/internal/game"
)

const writeTimeout = 2 * time.Second

// Server hosts a walking session and manages client connections.
// The first client to join is the pilot; everyone else spectates.
type Server struct {
	engine   *game.Engine
	addr     string
	listener net.Listener
	clients  map[string]*clientConn
	pilot    string
	viewers  *Hub
	nextID   atomic.Uint64
	mu       sync.RWMutex
	done     chan struct{}
	log      *zap.SugaredLogger
}

// clientConn represents a connected client.
type clientConn struct {
	conn     net.Conn
	clientID string
	name     string
	mu       sync.Mutex
}

// NewServer creates a server around an engine.
func NewServer(addr string, engine *game.Engine, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		engine:  engine,
		addr:    addr,
		clients: make(map[string]*clientConn),
		viewers: NewHub(log),
		done:    make(chan struct{}),
		log:     log,
	}

	// Broadcast callback receives a pre-copied snapshot from the engine
	engine.OnTick(s.broadcastState)

	return s
}

// Engine returns the underlying engine.
func (s *Server) Engine() *game.Engine {
	return s.engine
}

// Viewers returns the WebSocket spectator hub.
func (s *Server) Viewers() *Hub {
	return s.viewers
}

// Start begins accepting connections and running the frame loop.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.log.Infow("listening", "addr", s.listener.Addr().String())

	go s.engine.Run()
	go s.acceptLoop()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts down the server.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}
	s.engine.Stop()
	if s.listener != nil {
		s.listener.Close()
	}
	s.viewers.Close()
	s.mu.RLock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.mu.RUnlock()
}

// ClientCount returns the number of connected TCP clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Pilot returns the ID of the driving client, or "" when nobody drives.
func (s *Server) Pilot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pilot
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.log.Warnw("accept failed", "error", err)
				continue
			}
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()

	env, err := Decode(conn)
	if err != nil {
		s.log.Warnw("failed to read join message", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	if env.Type != MsgJoin {
		s.log.Warnw("expected join message", "got", env.Type)
		Encode(conn, MsgError, ErrorMsg{Message: "expected join message"})
		return
	}

	var joinMsg JoinMsg
	if err := DecodePayload(env, &joinMsg); err != nil {
		s.log.Warnw("bad join message", "error", err)
		return
	}

	cc := &clientConn{
		conn:     conn,
		clientID: fmt.Sprintf("c%d", s.nextID.Add(1)),
		name:     joinMsg.Name,
	}

	s.mu.Lock()
	s.clients[cc.clientID] = cc
	pilot := s.pilot == ""
	if pilot {
		s.pilot = cc.clientID
	}
	s.mu.Unlock()

	s.log.Infow("client joined", "name", cc.name, "client", cc.clientID, "pilot", pilot)

	cfg := s.engine.Config
	welcome := WelcomeMsg{
		ClientID: cc.clientID,
		Pilot:    pilot,
		Grid:     s.engine.Grid(),
		Tuning:   cfg.Motion.Tuning,
	}
	if err := s.send(cc, MsgWelcome, welcome); err != nil {
		s.log.Warnw("failed to send welcome", "client", cc.clientID, "error", err)
		s.removeClient(cc.clientID)
		return
	}

	s.sendStateTo(cc, s.engine.Snapshot())

	for {
		select {
		case <-s.done:
			return
		default:
		}

		env, err := Decode(conn)
		if err != nil {
			s.log.Infow("client disconnected", "client", cc.clientID, "error", err)
			s.removeClient(cc.clientID)
			return
		}

		switch env.Type {
		case MsgControl:
			var msg ControlMsg
			if err := DecodePayload(env, &msg); err != nil {
				s.log.Warnw("invalid control", "client", cc.clientID, "error", err)
				continue
			}
			if s.Pilot() != cc.clientID {
				s.log.Debugw("ignoring spectator control", "client", cc.clientID)
				continue
			}
			s.engine.ApplyControl(game.Control{
				Keys:   msg.Keys,
				LookDX: msg.LookDX,
				LookDY: msg.LookDY,
			})
		default:
			s.log.Warnw("unknown message type", "client", cc.clientID, "type", env.Type)
		}
	}
}

// removeClient drops a client. If it was the pilot, the mover's keys are
// released and the seat is free for the next joiner.
func (s *Server) removeClient(clientID string) {
	s.mu.Lock()
	if cc, ok := s.clients[clientID]; ok {
		cc.conn.Close()
		delete(s.clients, clientID)
	}
	wasPilot := s.pilot == clientID
	if wasPilot {
		s.pilot = ""
	}
	s.mu.Unlock()

	if wasPilot {
		s.engine.Release()
	}
	s.log.Infow("client removed", "client", clientID, "was_pilot", wasPilot)
}

func (s *Server) broadcastState(snap game.Snapshot) {
	s.mu.RLock()
	for _, cc := range s.clients {
		s.sendStateTo(cc, snap)
	}
	s.mu.RUnlock()

	s.viewers.Broadcast(snap)
}

func (s *Server) sendStateTo(cc *clientConn, snap game.Snapshot) {
	if err := s.send(cc, MsgState, StateMsg{Snapshot: snap}); err != nil {
		s.log.Debugw("failed to send state", "client", cc.clientID, "error", err)
	}
}

func (s *Server) send(cc *clientConn, msgType MsgType, payload interface{}) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return Encode(cc.conn, msgType, payload)
}
