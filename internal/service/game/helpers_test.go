package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeScheduler 记录计时器，只有在测试调用 fire 时才触发
type fakeScheduler struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := &fakeTimer{d: d, f: f}
	s.pending = append(s.pending, timer)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()

		wasActive := !timer.stopped
		timer.stopped = true
		return wasActive
	}
}

// fire 触发所有未被取消的计时器
func (s *fakeScheduler) fire() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, timer := range pending {
		if !timer.stopped {
			timer.stopped = true
			timer.f()
		}
	}
}

// active 返回尚未触发或取消的计时器时长
func (s *fakeScheduler) active() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []time.Duration
	for _, timer := range s.pending {
		if !timer.stopped {
			out = append(out, timer.d)
		}
	}
	return out
}

type fixedWords string

func (w fixedWords) Next(string, []string) string {
	return string(w)
}

const unknownCategory = "no-such-category"

func (w fixedWords) HasCategory(category string) bool {
	return category != unknownCategory
}

const testWord = "apple"

type testRoom struct {
	t        *testing.T
	m        *RoomMachine
	sched    *fakeScheduler
	sessions []*Session
}

var testNames = []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Niaj", "Olivia"}

// newTestRoom 创建一个有 n 名玩家的房间，房主是第一个玩家
func newTestRoom(t *testing.T, n int) *testRoom {
	t.Helper()

	sched := &fakeScheduler{}
	host := NewSession("p0", 256)

	m := NewRoomMachine("12345", host, testNames[0], MachineOptions{
		Words:     fixedWords(testWord),
		Scheduler: sched,
		Timing:    DefaultTiming(),
	})
	m.boot()

	tr := &testRoom{t: t, m: m, sched: sched, sessions: []*Session{host}}

	for i := 1; i < n; i++ {
		sess := NewSession(fmt.Sprintf("p%d", i), 256)
		require.NoError(t, tr.do(sess, REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: testNames[i]}))
		tr.sessions = append(tr.sessions, sess)
	}

	for _, sess := range tr.sessions {
		drain(sess)
	}

	return tr
}

func (tr *testRoom) do(sess *Session, reqType string, data any) error {
	return tr.m.dispatch(RequestWrapper{
		ReqType: reqType,
		Data:    mustMarshal(data),
		Session: sess,
	})
}

// fireTimers 触发计时器，并把投递到超时通道的请求交给房间处理
func (tr *testRoom) fireTimers() {
	tr.sched.fire()

	for {
		select {
		case req := <-tr.m.ctx.TmoCh:
			tr.m.handle(req)
		default:
			return
		}
	}
}

func (tr *testRoom) host() *Session {
	return tr.sessions[0]
}

func (tr *testRoom) stage() string {
	return tr.m.ctx.GameStage
}

func (tr *testRoom) spy() *Session {
	for _, sess := range tr.sessions {
		if sess.ID == tr.m.ctx.Round.SpyID {
			return sess
		}
	}

	tr.t.Fatalf("spy session not found")
	return nil
}

// nonSpies 返回仍在房间中的非卧底会话
func (tr *testRoom) nonSpies() []*Session {
	var out []*Session
	for _, sess := range tr.sessions {
		if sess.ID != tr.m.ctx.Round.SpyID && tr.m.ctx.FindPlayer(sess.ID) != nil {
			out = append(out, sess)
		}
	}
	return out
}

func (tr *testRoom) members() []*Session {
	var out []*Session
	for _, sess := range tr.sessions {
		if tr.m.ctx.FindPlayer(sess.ID) != nil {
			out = append(out, sess)
		}
	}
	return out
}

func (tr *testRoom) nameOf(sess *Session) string {
	return tr.m.ctx.FindPlayer(sess.ID).Name
}

// startRound 从大厅开始一轮并推进到提示阶段
func (tr *testRoom) startRound() {
	tr.t.Helper()

	require.NoError(tr.t, tr.do(tr.host(), REQ_START_GAME, RoomRequest{Code: "12345"}))
	require.Equal(tr.t, STAGE_REVEAL, tr.stage())

	tr.fireTimers()
	require.Equal(tr.t, STAGE_HINTS, tr.stage())
}

func (tr *testRoom) allHint() {
	tr.t.Helper()

	for _, sess := range tr.members() {
		require.NoError(tr.t, tr.do(sess, REQ_SUBMIT_HINT, SubmitHintRequest{Code: "12345", Text: "round"}))
	}
	require.Equal(tr.t, STAGE_VOTING, tr.stage())
}

func (tr *testRoom) allVote(candidate string) {
	tr.t.Helper()

	for _, sess := range tr.members() {
		require.NoError(tr.t, tr.do(sess, REQ_SUBMIT_VOTE, SubmitVoteRequest{Code: "12345", CandidateName: candidate}))
	}
}

func drain(sess *Session) []ResponseWrapper {
	var out []ResponseWrapper
	for {
		select {
		case resp := <-sess.RespCh:
			out = append(out, resp)
		default:
			return out
		}
	}
}

func ofType(resps []ResponseWrapper, respType string) []ResponseWrapper {
	var out []ResponseWrapper
	for _, resp := range resps {
		if resp.RespType == respType {
			out = append(out, resp)
		}
	}
	return out
}
