package websocketPkg

import (
	"NutriLens/internal/entity"
	"context"
	"errors"
	"fmt"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

var ErrNotConnected = errors.New("not connected to inference service")

type IWebsocket interface {
	ProcessFrame(ctx context.Context, frame []byte) (*entity.InferenceResult, error)
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

type webSocketClient struct {
	url string
	log *logrus.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	// holds one token; a request owns the connection while it holds it
	slot chan struct{}

	pingInterval     time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
}

// NewInferenceClient returns a client for a YOLO inference service that
// takes binary image frames and answers with a JSON InferenceResult. The
// connection is dialled on first use.
func NewInferenceClient(url string, log *logrus.Logger) IWebsocket {
	return &webSocketClient{
		url:              url,
		log:              log,
		pingInterval:     30 * time.Second,
		readTimeout:      15 * time.Second,
		writeTimeout:     5 * time.Second,
		handshakeTimeout: 10 * time.Second,
		slot:             make(chan struct{}, 1),
	}
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	_, err := c.connection()
	return err
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *webSocketClient) connection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	if c.url == "" {
		return nil, fmt.Errorf("%w: url not configured", ErrNotConnected)
	}

	c.log.Infof("Connecting to inference service at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.handshakeTimeout

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	c.conn = conn
	go c.keepAlive(conn)

	return conn, nil
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		current := c.conn
		c.mu.Unlock()

		if current != conn {
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.Warnf("Ping to inference service failed, dropping connection: %v", err)
			c.drop(conn)
			return
		}
	}
}

// ProcessFrame sends one frame and waits for its result. It gives up as
// soon as ctx is done, whether still queued behind another request or
// already waiting for the reply.
func (c *webSocketClient) ProcessFrame(ctx context.Context, frame []byte) (*entity.InferenceResult, error) {
	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.slot }()

	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	c.log.Debugf("Sending frame of size %d bytes to inference service", len(frame))

	conn.SetWriteDeadline(deadline(ctx, c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.drop(conn)
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("error sending frame: %w", err)
	}

	// a cancelled ctx unblocks the read; the connection is unusable after that
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	conn.SetReadDeadline(deadline(ctx, c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("error reading inference response: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var result entity.InferenceResult
	if err := jsoniter.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling inference response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("inference service error: %s", result.Error)
	}

	return &result, nil
}

// ctxErr also reports a deadline that has passed but whose timer has not
// fired yet, since the socket deadline can trip first.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return nil
}

func deadline(ctx context.Context, d time.Duration) time.Time {
	t := time.Now().Add(d)
	if dl, ok := ctx.Deadline(); ok && dl.Before(t) {
		return dl
	}
	return t
}
