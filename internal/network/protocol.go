package network

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

// MaxMessageSize caps a single framed message body.
const MaxMessageSize = 1 << 20

// MsgType identifies the type of network message.
type MsgType string

const (
	MsgJoin    MsgType = "join"
	MsgWelcome MsgType = "welcome"
	MsgControl MsgType = "control"
	MsgState   MsgType = "state"
	MsgError   MsgType = "error"
)

// Envelope wraps all messages with a type discriminator for deserialization.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- Client → Server Messages ---

// JoinMsg is sent by a client to join the session.
type JoinMsg struct {
	Name string `json:"name"`
}

// ControlMsg carries the pilot's held keys and look deltas.
type ControlMsg struct {
	Keys   motion.Keys `json:"keys"`
	LookDX float64     `json:"look_dx,omitempty"`
	LookDY float64     `json:"look_dy,omitempty"`
}

// --- Server → Client Messages ---

// WelcomeMsg is sent to a client after joining.
type WelcomeMsg struct {
	ClientID string        `json:"client_id"`
	Pilot    bool          `json:"pilot"` // Only the pilot's control is applied
	Grid     maze.Grid     `json:"grid"`
	Tuning   motion.Tuning `json:"tuning"`
}

// StateMsg carries one frame's snapshot.
type StateMsg struct {
	Snapshot game.Snapshot `json:"snapshot"`
}

// ErrorMsg notifies a client of an error.
type ErrorMsg struct {
	Message string `json:"message"`
}

// Encode serializes a message and writes it to the writer.
// Format: [4-byte big-endian length][JSON body]
func Encode(w io.Writer, msgType MsgType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	body, err := json.Marshal(Envelope{
		Type:    msgType,
		Payload: json.RawMessage(payloadBytes),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(body) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes", len(body))
	}

	// One write so concurrent readers never see a header without its body
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// Decode reads a length-prefixed JSON message from the reader.
func Decode(r io.Reader) (*Envelope, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}

	if length > MaxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	return &env, nil
}

// DecodePayload unmarshals the payload from an envelope into the target struct.
func DecodePayload(env *Envelope, target interface{}) error {
	if err := json.Unmarshal(env.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return nil
}
