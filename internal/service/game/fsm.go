package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// MachineOptions 是房间状态机的外部依赖
type MachineOptions struct {
	Words     WordSource
	Scheduler Scheduler
	Timing    Timing
	// 请求通道容量，为 0 时使用默认值
	QueueSize int
}

const DEFAULT_QUEUE_SIZE = 64

// RoomMachine 是单个房间的状态机，房间的所有状态只在 Start 所在的协程中读写
type RoomMachine struct {
	ctx     *RoomContext
	handler StageHandler
	// 所有玩家请求汇总的通道
	reqCh chan RequestWrapper
	// 离开请求单独投递，不受 reqCh 容量限制
	leaveCh chan RequestWrapper
	// 外部要求关闭房间
	doneCh    chan struct{}
	closeOnce sync.Once
	// 事件循环退出后关闭
	exitCh chan struct{}

	// 保护 exited，保证退出后不再有请求进入 reqCh
	mu     sync.RWMutex
	exited bool

	createdAt  time.Time
	lastActive atomic.Int64
}

func NewRoomMachine(code string, host *Session, hostName string, opts MachineOptions) *RoomMachine {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler()
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DEFAULT_QUEUE_SIZE
	}

	m := &RoomMachine{
		ctx:       newRoomContext(code, host, hostName, opts),
		handler:   NewLobbyStageHandler(),
		reqCh:     make(chan RequestWrapper, opts.QueueSize),
		leaveCh:   make(chan RequestWrapper),
		doneCh:    make(chan struct{}),
		exitCh:    make(chan struct{}),
		createdAt: time.Now(),
	}

	m.handler.SetOnSwitch(m.onSwitch)
	m.lastActive.Store(m.createdAt.UnixNano())

	return m
}

func (m *RoomMachine) onSwitch(nextStage string) {
	m.ctx.GameStage = nextStage
}

func (m *RoomMachine) Code() string {
	return m.ctx.Code
}

// boot 进入大厅并通知房主房间已创建
func (m *RoomMachine) boot() {
	m.handler.OnEnter(m.ctx)

	host := m.ctx.GetHost()
	host.session.Send(WrapResponse(
		RESP_ROOM_CREATED,
		RoomCreatedResponse{
			Code: m.ctx.Code,
			Room: m.ctx.Snapshot(),
			You:  host.View(),
		},
	))

	zap.L().Info(
		"房间已创建",
		zap.String("room_code", m.ctx.Code),
		zap.String("host_id", host.ID),
		zap.String("host_name", host.Name),
	)
}

// Start 运行房间的事件循环，直到房间清空或被关闭
func (m *RoomMachine) Start() {
	m.boot()

	for m.ctx.GameStage != STAGE_CLOSED {
		var req RequestWrapper

		select {
		case req = <-m.reqCh:
			zap.L().Debug(
				"接收到客户端请求",
				zap.String("room_code", m.ctx.Code),
				zap.String("request_type", req.ReqType),
			)
		case req = <-m.leaveCh:
			zap.L().Debug(
				"接收到离开请求",
				zap.String("room_code", m.ctx.Code),
			)
		case req = <-m.ctx.TmoCh:
			zap.L().Debug(
				"接收到超时事件",
				zap.String("room_code", m.ctx.Code),
			)
		case <-m.doneCh:
			m.shutdown()
			continue
		}

		m.handle(req)
	}

	m.ctx.ClearTimeout()
	m.exit()

	zap.L().Info(
		"房间状态机已结束",
		zap.String("room_code", m.ctx.Code),
		zap.Duration("lifetime", time.Since(m.createdAt)),
	)
}

// shutdown 由外部关闭房间时通知所有玩家
func (m *RoomMachine) shutdown() {
	zap.L().Info(
		"收到退出信号，关闭房间",
		zap.String("room_code", m.ctx.Code),
	)

	m.ctx.BroadcastResp(WrapErrResponse("房间已关闭"))

	for _, p := range m.ctx.Players {
		if p.session != nil {
			p.session.detach(m.ctx.Code)
		}
	}

	m.ctx.Players = nil
	m.ctx.GameStage = STAGE_CLOSED
}

// exit 拒绝后续请求，并回复仍在队列中的请求
func (m *RoomMachine) exit() {
	m.mu.Lock()
	m.exited = true
	m.mu.Unlock()

	close(m.exitCh)

	for {
		select {
		case req := <-m.reqCh:
			if req.Session != nil {
				req.Session.Send(WrapErrResponse(ErrRoomNotFound.Error()))
			}
		default:
			return
		}
	}
}

// handle 处理请求，并把可公开的错误回复给请求者
func (m *RoomMachine) handle(req RequestWrapper) {
	err := m.dispatch(req)
	if err == nil {
		return
	}

	if IsPublic(err) && req.Session != nil {
		req.Session.Send(WrapErrResponse(err.Error()))
	}

	zap.L().Debug(
		"处理请求失败",
		zap.String("room_code", m.ctx.Code),
		zap.String("stage", m.handler.Stage()),
		zap.String("request_type", req.ReqType),
		zap.Error(err),
	)
}

func (m *RoomMachine) dispatch(req RequestWrapper) error {
	if req.ReqType == REQ_SNAPSHOT {
		if req.replyCh != nil {
			req.replyCh <- m.ctx.Snapshot()
		}
		return nil
	}

	err := m.handler.OnHandle(m.ctx, req)

	// OnEnter 中可能再次切换阶段
	for m.ctx.GameStage != m.handler.Stage() {
		if !m.switchStage() {
			break
		}

		m.handler.OnEnter(m.ctx)
	}

	return err
}

// switchStage 根据 GameStage 替换当前 handler，进入 closed 时返回 false
func (m *RoomMachine) switchStage() bool {
	m.handler.OnExit(m.ctx)

	var next StageHandler

	switch m.ctx.GameStage {
	case STAGE_LOBBY:
		next = NewLobbyStageHandler()
	case STAGE_REVEAL:
		next = NewRevealStageHandler()
	case STAGE_HINTS:
		next = NewHintStageHandler()
	case STAGE_VOTING:
		next = NewVoteStageHandler()
	case STAGE_SPY_CHANCE:
		next = NewSpyChanceStageHandler()
	case STAGE_RESULTS:
		next = NewResultStageHandler()
	case STAGE_CLOSED:
		return false
	default:
		zap.L().Error(
			"未知的游戏阶段",
			zap.String("room_code", m.ctx.Code),
			zap.String("stage", m.ctx.GameStage),
		)
		m.ctx.GameStage = m.handler.Stage()
		return false
	}

	next.SetOnSwitch(m.onSwitch)
	m.handler = next

	zap.L().Debug(
		"切换游戏阶段",
		zap.String("room_code", m.ctx.Code),
		zap.String("stage", next.Stage()),
	)

	return true
}

// Submit 将请求投递给房间，不会阻塞调用方
func (m *RoomMachine) Submit(req RequestWrapper) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.exited {
		return ErrRoomNotFound
	}

	select {
	case m.reqCh <- req:
	default:
		return ErrRoomBusy
	}

	if req.ReqType != REQ_SNAPSHOT {
		m.lastActive.Store(time.Now().UnixNano())
	}

	return nil
}

// SubmitLeave 投递离开请求，会一直等待到房间接收或房间退出
func (m *RoomMachine) SubmitLeave(req RequestWrapper) error {
	select {
	case m.leaveCh <- req:
		m.lastActive.Store(time.Now().UnixNano())
		return nil
	case <-m.exitCh:
		return ErrRoomNotFound
	}
}

// Snapshot 通过房间协程读取房间的公开视图
func (m *RoomMachine) Snapshot(ctx context.Context) (RoomSnapshot, error) {
	replyCh := make(chan RoomSnapshot, 1)

	if err := m.Submit(RequestWrapper{ReqType: REQ_SNAPSHOT, replyCh: replyCh}); err != nil {
		return RoomSnapshot{}, err
	}

	select {
	case snapshot := <-replyCh:
		return snapshot, nil
	case <-m.exitCh:
		return RoomSnapshot{}, ErrRoomNotFound
	case <-ctx.Done():
		return RoomSnapshot{}, ctx.Err()
	}
}

// Close 要求房间关闭，可重复调用
func (m *RoomMachine) Close() {
	m.closeOnce.Do(func() {
		close(m.doneCh)
	})
}

// Done 在事件循环退出后关闭
func (m *RoomMachine) Done() <-chan struct{} {
	return m.exitCh
}

func (m *RoomMachine) LastActive() time.Time {
	return time.Unix(0, m.lastActive.Load())
}
