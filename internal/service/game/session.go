package game

import (
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Session 对应一条玩家连接，所有发往该连接的响应都经过 RespCh
//
// RespCh 由传输层持有并负责消费，游戏逻辑永远不会关闭它，
// 因为同一条连接可能同时属于多个房间。
type Session struct {
	ID     string
	RespCh chan ResponseWrapper

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool
}

func NewSession(id string, bufSize int) *Session {
	return &Session{
		ID:     id,
		RespCh: make(chan ResponseWrapper, bufSize),
		rooms:  make(map[string]struct{}),
	}
}

// Send 非阻塞发送，通道满时丢弃并记录日志
func (s *Session) Send(resp ResponseWrapper) bool {
	select {
	case s.RespCh <- resp:
		return true
	default:
		zap.L().Warn(
			"发送响应失败：会话响应通道已满",
			zap.String("session_id", s.ID),
			zap.String("resp_type", resp.RespType),
		)
		return false
	}
}

// Rooms 返回该会话当前所在房间号的副本
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	return codes
}

// Close 标记连接已断开，返回此刻所在的房间号
//
// Close 之后 attach 会失败，因此断开前已排队的加入请求不会再把该会话加入房间。
func (s *Session) Close() []string {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return s.Rooms()
}

func (s *Session) attach(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.rooms[code] = struct{}{}
	return true
}

func (s *Session) detach(code string) {
	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()
}
