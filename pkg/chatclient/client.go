package chatclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"jobboard_chat_service/pkg/logger"

	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized token 被拒, 不再重試
	ErrUnauthorized = errors.New("chatclient: unauthorized")
	// ErrReconnectFailed backoff 用完仍連不上
	ErrReconnectFailed = errors.New("chatclient: reconnect failed")
	// ErrNotConnected 尚未 Connect 或已 Close
	ErrNotConnected = errors.New("chatclient: not connected")
)

// DefaultBackoff wait before each retry
var DefaultBackoff = []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}

// Request mirrors the gateway request frame
type Request struct {
	Action          string   `json:"action"`
	ConversationID  string   `json:"conversation_id,omitempty"`
	ConversationIDs []string `json:"conversation_ids,omitempty"`
	RecipientID     string   `json:"recipient_id,omitempty"`
	Content         string   `json:"content,omitempty"`
	ClientMsgID     string   `json:"client_msg_id,omitempty"`
	UptoSeq         int64    `json:"upto_seq,omitempty"`
}

// Response mirrors the gateway response / push frame
type Response struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Option configure Client
type Option func(*Client)

// WithBackoff replace DefaultBackoff, len(backoff) 即重試次數
func WithBackoff(backoff ...time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoff
	}
}

// WithDialer replace gorilla DefaultDialer
func WithDialer(d *gws.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// Client websocket client of the chat gateway, 斷線時自動重連並重新 join
type Client struct {
	url     string
	token   string
	dialer  *gws.Dialer
	backoff []time.Duration
	events  chan Response

	mu       sync.Mutex
	conn     *gws.Conn
	channels map[string]struct{}
	closed   bool

	writeMu sync.Mutex
}

// New create Client, 需呼叫 Connect 後再 Run
func New(url, token string, opts ...Option) *Client {
	c := &Client{
		url:      url,
		token:    token,
		dialer:   gws.DefaultDialer,
		backoff:  DefaultBackoff,
		events:   make(chan Response, 64),
		channels: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events responses and pushes, Run 結束時關閉
func (c *Client) Events() <-chan Response {
	return c.events
}

// Connect dial with backoff, 401 直接回 ErrUnauthorized
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) dial(ctx context.Context) (*gws.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	for attempt := 0; ; attempt++ {
		conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err == nil {
			return conn, nil
		}
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		if attempt >= len(c.backoff) {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrReconnectFailed, attempt+1, err)
		}

		logger.Log.Warn("chat dial failed, retrying...", zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff[attempt]):
		}
	}
}

// Run read loop, 斷線時重連並 rejoin, 回傳時 Events 已關閉
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)

	for {
		conn := c.current()
		if conn == nil {
			return ErrNotConnected
		}

		err := c.readLoop(ctx, conn)
		if ctx.Err() != nil || c.isClosed() {
			return nil
		}
		logger.Log.Warn("chat connection lost, reconnecting", zap.Error(err))

		if err := c.reconnect(ctx); err != nil {
			return err
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *gws.Conn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var resp Response
		if err := conn.ReadJSON(&resp); err != nil {
			return err
		}
		select {
		case c.events <- resp:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	channels := c.joinedLocked()
	c.mu.Unlock()

	if len(channels) == 0 {
		return nil
	}
	return c.write(Request{Action: "join", ConversationIDs: channels})
}

// Join 記住 channel, 重連後自動重新 join
func (c *Client) Join(conversationIDs ...string) error {
	c.mu.Lock()
	for _, id := range conversationIDs {
		c.channels[id] = struct{}{}
	}
	c.mu.Unlock()
	return c.write(Request{Action: "join", ConversationIDs: conversationIDs})
}

// Leave stop receiving pushes of the channels
func (c *Client) Leave(conversationIDs ...string) error {
	c.mu.Lock()
	for _, id := range conversationIDs {
		delete(c.channels, id)
	}
	c.mu.Unlock()
	return c.write(Request{Action: "leave", ConversationIDs: conversationIDs})
}

// Send 沒收到 ack 視為失敗, 重送會是新的一則訊息
func (c *Client) Send(conversationID, content, clientMsgID string) error {
	return c.write(Request{Action: "send", ConversationID: conversationID, Content: content, ClientMsgID: clientMsgID})
}

// MarkRead uptoSeq 為 0 時讀到最新
func (c *Client) MarkRead(conversationID string, uptoSeq int64) error {
	return c.write(Request{Action: "mark_read", ConversationID: conversationID, UptoSeq: uptoSeq})
}

// Joined channels re-joined on reconnect
func (c *Client) Joined() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joinedLocked()
}

func (c *Client) joinedLocked() []string {
	out := make([]string, 0, len(c.channels))
	for id := range c.channels {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Close 關閉連線, Run 隨之返回
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *Client) write(req Request) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(req)
}

func (c *Client) current() *gws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
