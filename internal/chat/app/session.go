package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"jobboard_chat_service/internal/chat/domain"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const writeWait = 10 * time.Second

var (
	// ErrSessionClosed send on a discarded session
	ErrSessionClosed = errors.New("session closed")
	// ErrSlowConsumer outbound buffer full, session dropped
	ErrSlowConsumer = errors.New("session send buffer full")
	// ErrSessionBusy too many pending requests on one session
	ErrSessionBusy = errors.New("session busy")
)

// wsConn 是 fiber websocket.Conn 用到的部分
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Session one live websocket of an authenticated member
type Session struct {
	ID       string
	Identity domain.Identity

	conn         wsConn
	send         chan []byte
	inbox        chan func()
	closeCh      chan struct{}
	once         sync.Once
	pingInterval time.Duration
	state        atomic.Int32

	mu       sync.Mutex
	channels map[string]struct{}
}

// NewSession wrap conn, 尚未啟動 write loop
func NewSession(identity domain.Identity, conn wsConn, sendBuffer, inboxSize int, pingInterval time.Duration) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		Identity:     identity,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		inbox:        make(chan func(), inboxSize),
		closeCh:      make(chan struct{}),
		pingInterval: pingInterval,
		channels:     make(map[string]struct{}),
	}
	s.state.Store(int32(domain.StateConnecting))
	return s
}

// Start launches the write loop and the request worker, 只能呼叫一次
func (s *Session) Start() {
	go s.writeLoop()
	go s.worker()
}

// State current lifecycle state
func (s *Session) State() domain.SessionState {
	return domain.SessionState(s.state.Load())
}

func (s *Session) setState(state domain.SessionState) {
	s.state.Store(int32(state))
}

// Send 放入 outbound buffer, buffer 滿代表 client 太慢, 直接斷線
func (s *Session) Send(payload []byte) error {
	select {
	case <-s.closeCh:
		return ErrSessionClosed
	default:
	}

	select {
	case <-s.closeCh:
		return ErrSessionClosed
	case s.send <- payload:
		return nil
	default:
		// close handshake 可能卡 writeWait, 不能佔住 hub 的推播 goroutine
		if s.markClosed() {
			go s.closeConn(websocket.CloseGoingAway, "send buffer full")
		}
		return ErrSlowConsumer
	}
}

// Enqueue 交給 worker 執行, read loop 不等 storage
func (s *Session) Enqueue(job func()) error {
	select {
	case <-s.closeCh:
		return ErrSessionClosed
	case s.inbox <- job:
		return nil
	default:
		return ErrSessionBusy
	}
}

// Close terminates the connection, send channel 不關閉避免 Send panic
func (s *Session) Close(code int, reason string) {
	if s.markClosed() {
		s.closeConn(code, reason)
	}
}

// markClosed 只有第一次呼叫回傳 true
func (s *Session) markClosed() bool {
	first := false
	s.once.Do(func() {
		close(s.closeCh)
		s.setState(domain.StateDisconnected)
		first = true
	})
	return first
}

func (s *Session) closeConn(code int, reason string) {
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = s.conn.Close()
}

// Done closed when the session is discarded
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

func (s *Session) joined(conversationID string) {
	s.mu.Lock()
	s.channels[conversationID] = struct{}{}
	s.mu.Unlock()
	s.setState(domain.StateJoined)
}

// left 離開最後一個 channel 時回到 Authenticated
func (s *Session) left(conversationID string) {
	s.mu.Lock()
	delete(s.channels, conversationID)
	remaining := len(s.channels)
	s.mu.Unlock()
	if remaining == 0 && s.State() == domain.StateJoined {
		s.setState(domain.StateAuthenticated)
	}
}

// IsJoined session joined conversationID
func (s *Session) IsJoined(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[conversationID]
	return ok
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closeCh:
			return
		case msg := <-s.send:
			if err := s.write(websocket.TextMessage, msg); err != nil {
				s.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			// server ping, client 的 pong 會延長 read deadline
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (s *Session) write(messageType int, payload []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, payload)
}

func (s *Session) worker() {
	for {
		select {
		case <-s.closeCh:
			return
		case job := <-s.inbox:
			job()
		}
	}
}
