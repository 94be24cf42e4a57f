package network

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

// Client connects to a session host, sends control when it is the pilot and
// receives frame snapshots.
type Client struct {
	conn     net.Conn
	clientID string
	pilot    bool
	grid     maze.Grid
	tuning   motion.Tuning
	stateCh  chan game.Snapshot
	done     chan struct{}
	mu       sync.Mutex
}

// NewClient creates a new client and joins the session at addr.
func NewClient(addr, name string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		stateCh: make(chan game.Snapshot, 10),
		done:    make(chan struct{}),
	}

	if err := Encode(conn, MsgJoin, JoinMsg{Name: name}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}

	env, err := Decode(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}

	if env.Type == MsgError {
		var errMsg ErrorMsg
		DecodePayload(env, &errMsg)
		conn.Close()
		return nil, fmt.Errorf("server error: %s", errMsg.Message)
	}

	if env.Type != MsgWelcome {
		conn.Close()
		return nil, fmt.Errorf("expected welcome, got %s", env.Type)
	}

	var welcome WelcomeMsg
	if err := DecodePayload(env, &welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode welcome: %w", err)
	}

	c.clientID = welcome.ClientID
	c.pilot = welcome.Pilot
	c.grid = welcome.Grid
	c.tuning = welcome.Tuning

	go c.receiveLoop()

	return c, nil
}

// ClientID returns the ID the host assigned.
func (c *Client) ClientID() string {
	return c.clientID
}

// Pilot reports whether this client drives the mover.
func (c *Client) Pilot() bool {
	return c.pilot
}

// Grid returns the session's floor plan.
func (c *Client) Grid() maze.Grid {
	return c.grid
}

// Tuning returns the host's pipeline constants.
func (c *Client) Tuning() motion.Tuning {
	return c.tuning
}

// States returns a channel that yields frame snapshots. It is closed when the
// connection ends.
func (c *Client) States() <-chan game.Snapshot {
	return c.stateCh
}

// SendControl sends held keys and look deltas to the host.
func (c *Client) SendControl(ctl game.Control) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Encode(c.conn, MsgControl, ControlMsg{
		Keys:   ctl.Keys,
		LookDX: ctl.LookDX,
		LookDY: ctl.LookDY,
	})
}

// Close disconnects from the host.
func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.conn.Close()
}

func (c *Client) receiveLoop() {
	defer close(c.stateCh)

	for {
		select {
		case <-c.done:
			return
		default:
		}

		env, err := Decode(c.conn)
		if err != nil {
			return
		}

		switch env.Type {
		case MsgState:
			var stateMsg StateMsg
			if err := DecodePayload(env, &stateMsg); err != nil {
				continue
			}
			// Latest frame matters most: drop the oldest if the consumer lags
			select {
			case c.stateCh <- stateMsg.Snapshot:
			default:
				select {
				case <-c.stateCh:
				default:
				}
				c.stateCh <- stateMsg.Snapshot
			}
		case MsgError:
			// Host errors after welcome are informational only
		}
	}
}
