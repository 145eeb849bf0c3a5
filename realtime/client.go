// Package realtime drives one complete voice exchange over a duplex
// channel to a server-VAD turn-taking audio service.
package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"saman-voice/audio"
)

const (
	// DefaultChunkSize bounds each append event to 8KiB of encoded
	// text, respecting the channel's per-message limits.
	DefaultChunkSize = 8192

	// DefaultTimeout caps one exchange. The terminal event depends on
	// a remote voice-activity decision, so an upper bound is required.
	DefaultTimeout = 45 * time.Second

	// defaultMaxResponseBytes caps assembled response audio (PCM).
	defaultMaxResponseBytes = 10 * 1024 * 1024

	protocolHeader = "OpenAI-Beta"
	protocolValue  = "realtime=v1"
)

// Conn is the message-framed duplex channel. *websocket.Conn
// satisfies it; tests script one.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens the duplex channel.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

type wsDialer struct{}

func (wsDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Client connects to the realtime endpoint and runs exchanges.
type Client struct {
	apiKey     string
	url        string // full endpoint including model query parameter
	voice      string
	transcoder audio.Transcoder

	dialer    Dialer
	chunkSize int
	timeout   time.Duration
	maxBytes  int
}

// Option tunes a Client.
type Option func(*Client)

// WithDialer replaces the websocket dialer (used by tests).
func WithDialer(d Dialer) Option { return func(c *Client) { c.dialer = d } }

// WithChunkSize overrides the upload chunk bound.
func WithChunkSize(n int) Option { return func(c *Client) { c.chunkSize = n } }

// WithTimeout overrides the per-exchange deadline.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithMaxResponseBytes overrides the assembled-audio cap.
func WithMaxResponseBytes(n int) Option { return func(c *Client) { c.maxBytes = n } }

// NewClient builds a realtime client. url must already carry the model
// query parameter, e.g. wss://api.openai.com/v1/realtime?model=...
func NewClient(apiKey, url, voice string, transcoder audio.Transcoder, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		url:        url,
		voice:      voice,
		transcoder: transcoder,
		dialer:     wsDialer{},
		chunkSize:  DefaultChunkSize,
		timeout:    DefaultTimeout,
		maxBytes:   defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// connect opens the channel with the bearer credential and protocol
// version marker attached. Connection refusal is fatal, no retry.
func (c *Client) connect(ctx context.Context) (Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set(protocolHeader, protocolValue)

	conn, err := c.dialer.Dial(ctx, c.url, header)
	if err != nil {
		return nil, &TransportError{Stage: "connect", Err: err}
	}
	return conn, nil
}
