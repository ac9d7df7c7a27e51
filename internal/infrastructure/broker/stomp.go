package broker

import (
	"context"
	"encoding/json"
	"sync"

	"stockex-backend/internal/application/notifications"

	"github.com/go-stomp/stomp/v3"
	"github.com/rs/zerolog/log"
)

const DefaultDestination = "/queue/notifications"

// Event is the frame body published for each notification.
type Event struct {
	ID      string                 `json:"id"`
	UserID  string                 `json:"user_id"`
	Kind    string                 `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
}

// StompPublisher is a notification sink that forwards messages to a STOMP broker.
// The connection is opened lazily and dropped after a failed send so the next
// attempt reconnects.
type StompPublisher struct {
	Addr        string
	Destination string
	Login       string
	Passcode    string

	mu   sync.Mutex
	conn *stomp.Conn
}

func NewStompPublisher(addr, destination string) *StompPublisher {
	if destination == "" {
		destination = DefaultDestination
	}
	return &StompPublisher{Addr: addr, Destination: destination}
}

func (p *StompPublisher) Name() string { return "broker" }

func (p *StompPublisher) Deliver(_ context.Context, m notifications.Message) error {
	body, err := json.Marshal(Event{
		ID:      m.ID.String(),
		UserID:  m.UserID.String(),
		Kind:    m.Kind,
		Payload: m.Payload,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	conn, err := p.connect()
	if err != nil {
		return err
	}
	if err := conn.Send(p.Destination, "application/json", body,
		stomp.SendOpt.Header("kind", m.Kind),
		stomp.SendOpt.Header("message-id", m.ID.String())); err != nil {
		_ = conn.Disconnect()
		p.conn = nil
		return err
	}
	return nil
}

// Ping opens and closes a fresh connection; used by the health endpoint.
func (p *StompPublisher) Ping(_ context.Context) error {
	conn, err := stomp.Dial("tcp", p.Addr, p.options()...)
	if err != nil {
		return err
	}
	return conn.Disconnect()
}

func (p *StompPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Disconnect()
	p.conn = nil
	return err
}

func (p *StompPublisher) connect() (*stomp.Conn, error) {
	if p.conn != nil {
		return p.conn, nil
	}
	conn, err := stomp.Dial("tcp", p.Addr, p.options()...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", p.Addr).Str("destination", p.Destination).Msg("broker: connected")
	p.conn = conn
	return conn, nil
}

func (p *StompPublisher) options() []func(*stomp.Conn) error {
	if p.Login == "" {
		return nil
	}
	return []func(*stomp.Conn) error{stomp.ConnOpt.Login(p.Login, p.Passcode)}
}
