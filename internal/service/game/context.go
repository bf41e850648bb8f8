package game

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

// WordSource 为一轮提供秘密词语
type WordSource interface {
	Next(category string, custom []string) string
	HasCategory(category string) bool
}

// RoomContext 是一个房间的全部状态，只能在房间自己的协程中读写
type RoomContext struct {
	Code         string
	GameStage    string
	Players      []*Player
	HostID       string
	Settings     Settings
	CurrentRound int

	// 大厅阶段为 nil
	Round *RoundState
	// 每次开局、中止、结束时递增，过期计时器据此被丢弃
	Generation uint64

	words     WordSource
	timers    Scheduler
	timing    Timing
	avatarSeq int

	TmoCh     chan RequestWrapper
	stopTimer func() bool
}

func (ctx *RoomContext) GetHost() *Player {
	return ctx.FindPlayer(ctx.HostID)
}

func (ctx *RoomContext) FindPlayer(playerID string) *Player {
	for _, p := range ctx.Players {
		if p.ID == playerID {
			return p
		}
	}

	return nil
}

func (ctx *RoomContext) FindPlayerByName(name string) *Player {
	for _, p := range ctx.Players {
		if p.Name == name {
			return p
		}
	}

	return nil
}

func (ctx *RoomContext) IsHost(playerID string) bool {
	return playerID != "" && ctx.HostID == playerID
}

func (ctx *RoomContext) nextAvatar() string {
	avatar := AVATARS[ctx.avatarSeq%len(AVATARS)]
	ctx.avatarSeq++

	return avatar
}

// Snapshot 构造房间的公开视图，永远不包含卧底身份和词语
func (ctx *RoomContext) Snapshot() RoomSnapshot {
	players := make([]PlayerView, 0, len(ctx.Players))
	for _, p := range ctx.Players {
		players = append(players, p.View())
	}

	settings := ctx.Settings
	settings.CustomWords = slices.Clone(ctx.Settings.CustomWords)

	return RoomSnapshot{
		Code:         ctx.Code,
		Players:      players,
		Settings:     settings,
		CurrentRound: ctx.CurrentRound,
		InGame:       ctx.Round != nil,
		HostID:       ctx.HostID,
		Stage:        ctx.GameStage,
	}
}

func (p *Player) View() PlayerView {
	return PlayerView{
		ID:     p.ID,
		Name:   p.Name,
		Avatar: p.Avatar,
		Score:  p.Score,
		Ready:  p.Ready,
		IsHost: p.IsHost,
	}
}

// Standings 按加入顺序列出当前分数
func (ctx *RoomContext) Standings() []Standing {
	standings := make([]Standing, 0, len(ctx.Players))
	for _, p := range ctx.Players {
		standings = append(standings, Standing{
			Name:   p.Name,
			Avatar: p.Avatar,
			Score:  p.Score,
		})
	}

	return standings
}

func (ctx *RoomContext) BroadcastResp(resp ResponseWrapper) {
	ctx.BroadcastExcept("", resp)
}

// BroadcastExcept 发送给除 exceptID 之外的所有玩家
func (ctx *RoomContext) BroadcastExcept(exceptID string, resp ResponseWrapper) {
	for _, p := range ctx.Players {
		if p.ID == exceptID || p.session == nil {
			continue
		}

		if p.session.Send(resp) {
			zap.L().Debug(
				"成功发送广播响应",
				zap.String("room_code", ctx.Code),
				zap.String("player_id", p.ID),
				zap.String("resp_type", resp.RespType),
			)
		}
	}
}

func (ctx *RoomContext) UnicastResp(playerID string, resp ResponseWrapper) {
	player := ctx.FindPlayer(playerID)
	if player == nil || player.session == nil {
		zap.L().Warn(
			"无法找到玩家进行单播响应",
			zap.String("room_code", ctx.Code),
			zap.String("player_id", playerID),
		)
		return
	}

	player.session.Send(resp)
}

func (ctx *RoomContext) broadcastSnapshot() {
	ctx.BroadcastResp(WrapResponse(
		RESP_ROOM_UPDATED,
		RoomUpdatedResponse{Room: ctx.Snapshot()},
	))
}

// SetTimeout 在 d 之后向房间投递当前阶段与当前代的超时请求
func (ctx *RoomContext) SetTimeout(d time.Duration) {
	ctx.ClearTimeout()

	tmo := RequestWrapper{
		ReqType: REQ_TIMEOUT,
		Data: mustMarshal(TimeoutRequest{
			Stage:      ctx.GameStage,
			Generation: ctx.Generation,
		}),
	}

	tmoCh := ctx.TmoCh
	code := ctx.Code

	ctx.stopTimer = ctx.timers.AfterFunc(d, func() {
		select {
		case tmoCh <- tmo:
		default:
			zap.L().Warn("投递超时请求失败：超时通道已满", zap.String("room_code", code))
		}
	})
}

func (ctx *RoomContext) ClearTimeout() {
	if ctx.stopTimer != nil {
		ctx.stopTimer()
		ctx.stopTimer = nil
	}
}
