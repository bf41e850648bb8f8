package service

import (
	"context"
	"sync"
	"time"

	"undercover-be/internal/service/game"

	"go.uber.org/zap"
)

type RegistryOptions struct {
	Machine game.MachineOptions
	// 超过该时长没有任何玩家请求的房间会被关闭，为 0 时不清理
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

// RoomRegistry 持有所有活跃房间，是房间之间唯一共享的结构
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*game.RoomMachine

	opts RegistryOptions
	// 生成房间号使用的随机源，测试中可替换
	intn func(n int) int

	cleanUpDone chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewRoomRegistry(opts RegistryOptions) *RoomRegistry {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = time.Minute
	}

	rs := &RoomRegistry{
		rooms:       make(map[string]*game.RoomMachine),
		opts:        opts,
		intn:        defaultIntn,
		cleanUpDone: make(chan struct{}),
	}

	// 定期清理长时间无人操作的房间
	if opts.IdleTimeout > 0 {
		go rs.startCleanupLoop()
	}

	return rs
}

func (rs *RoomRegistry) startCleanupLoop() {
	ticker := time.NewTicker(rs.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.cleanUpDone:
			return

		case now := <-ticker.C:
			rs.reapIdle(now)
		}
	}
}

// reapIdle 关闭空闲超时的房间，返回被关闭的房间号
func (rs *RoomRegistry) reapIdle(now time.Time) []string {
	rs.mu.RLock()
	var idle []*game.RoomMachine
	for _, m := range rs.rooms {
		if now.Sub(m.LastActive()) > rs.opts.IdleTimeout {
			idle = append(idle, m)
		}
	}
	rs.mu.RUnlock()

	codes := make([]string, 0, len(idle))
	for _, m := range idle {
		zap.L().Info(
			"房间长时间无人操作，开始清理",
			zap.String("room_code", m.Code()),
			zap.Time("last_active", m.LastActive()),
		)

		m.Close()
		codes = append(codes, m.Code())
	}

	return codes
}

// CreateRoom 以 host 为房主创建房间并启动房间协程，返回房间号
func (rs *RoomRegistry) CreateRoom(host *game.Session, hostName string) (string, error) {
	rs.mu.Lock()

	select {
	case <-rs.cleanUpDone:
		rs.mu.Unlock()
		return "", ErrRegistryClosed
	default:
	}

	code, err := generateRoomCode(rs.intn, func(code string) bool {
		_, taken := rs.rooms[code]
		return taken
	})
	if err != nil {
		rs.mu.Unlock()
		return "", err
	}

	m := game.NewRoomMachine(code, host, hostName, rs.opts.Machine)
	rs.rooms[code] = m
	rs.wg.Add(1)

	rs.mu.Unlock()

	go rs.run(m)

	return code, nil
}

// run 运行房间直到其退出，然后从注册表中移除
func (rs *RoomRegistry) run(m *game.RoomMachine) {
	defer rs.wg.Done()

	m.Start()

	rs.mu.Lock()
	if rs.rooms[m.Code()] == m {
		delete(rs.rooms, m.Code())
	}
	remaining := len(rs.rooms)
	rs.mu.Unlock()

	zap.L().Info(
		"房间已移除",
		zap.String("room_code", m.Code()),
		zap.Int("remaining_rooms", remaining),
	)
}

func (rs *RoomRegistry) Lookup(code string) (*game.RoomMachine, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	m, ok := rs.rooms[code]
	return m, ok
}

func (rs *RoomRegistry) Exists(code string) bool {
	_, ok := rs.Lookup(code)
	return ok
}

// Submit 把请求投递给对应房间
func (rs *RoomRegistry) Submit(code string, req game.RequestWrapper) error {
	m, ok := rs.Lookup(code)
	if !ok {
		return game.ErrRoomNotFound
	}

	return m.Submit(req)
}

// Leave 投递离开请求，房间队列已满时也不会丢失
func (rs *RoomRegistry) Leave(code string, req game.RequestWrapper) error {
	m, ok := rs.Lookup(code)
	if !ok {
		return game.ErrRoomNotFound
	}

	return m.SubmitLeave(req)
}

func (rs *RoomRegistry) Snapshot(ctx context.Context, code string) (game.RoomSnapshot, error) {
	m, ok := rs.Lookup(code)
	if !ok {
		return game.RoomSnapshot{}, game.ErrRoomNotFound
	}

	return m.Snapshot(ctx)
}

func (rs *RoomRegistry) Count() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return len(rs.rooms)
}

// Close 关闭所有房间并等待房间协程退出
func (rs *RoomRegistry) Close(ctx context.Context) error {
	rs.mu.Lock()
	rs.closeOnce.Do(func() {
		close(rs.cleanUpDone)
	})
	machines := make([]*game.RoomMachine, 0, len(rs.rooms))
	for _, m := range rs.rooms {
		machines = append(machines, m)
	}
	rs.mu.Unlock()

	for _, m := range machines {
		m.Close()
	}

	waitCh := make(chan struct{})
	go func() {
		rs.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		zap.L().Info("所有房间已关闭", zap.Int("rooms", len(machines)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
