package game

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// newRoomContext 以房主为唯一玩家初始化房间
func newRoomContext(code string, host *Session, hostName string, opts MachineOptions) *RoomContext {
	ctx := &RoomContext{
		Code:      code,
		GameStage: STAGE_LOBBY,
		Players:   make([]*Player, 0, MAX_PLAYERS),
		Settings:  DefaultSettings(),

		words:  opts.Words,
		timers: opts.Scheduler,
		timing: opts.Timing,
		TmoCh:  make(chan RequestWrapper, 8),
	}

	player := &Player{
		ID:      host.ID,
		Name:    uniqueName(ctx, hostName),
		Avatar:  ctx.nextAvatar(),
		Ready:   true,
		IsHost:  true,
		session: host,
	}

	ctx.Players = append(ctx.Players, player)
	ctx.HostID = player.ID
	host.attach(code)

	return ctx
}

func onPlayerJoin(ctx *RoomContext, sess *Session, req *JoinRoomRequest) error {
	if existing := ctx.FindPlayer(sess.ID); existing != nil {
		// 同一连接重复加入，只重发一次房间快照
		sess.Send(WrapResponse(
			RESP_ROOM_JOINED,
			RoomJoinedResponse{Room: ctx.Snapshot(), You: existing.View()},
		))
		return nil
	}

	if len(ctx.Players) >= MAX_PLAYERS {
		return ErrRoomFull
	}

	if ctx.Round != nil || ctx.GameStage != STAGE_LOBBY {
		return ErrGameInProgress
	}

	if !sess.attach(ctx.Code) {
		return ErrSessionClosed
	}

	player := &Player{
		ID:      sess.ID,
		Name:    uniqueName(ctx, req.Name),
		Avatar:  ctx.nextAvatar(),
		session: sess,
	}

	ctx.Players = append(ctx.Players, player)

	snapshot := ctx.Snapshot()

	sess.Send(WrapResponse(
		RESP_ROOM_JOINED,
		RoomJoinedResponse{Room: snapshot, You: player.View()},
	))

	ctx.BroadcastExcept(player.ID, WrapResponse(
		RESP_PLAYER_JOINED,
		PlayerJoinedResponse{Player: player.View(), Room: snapshot},
	))

	zap.L().Info(
		"玩家加入房间",
		zap.String("room_code", ctx.Code),
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name),
	)

	return nil
}

// onPlayerLeave 移除玩家并处理房主交接，返回离开的玩家；玩家不存在时返回 nil
func onPlayerLeave(ctx *RoomContext, playerID string) *Player {
	idx := slices.IndexFunc(ctx.Players, func(p *Player) bool {
		return p.ID == playerID
	})
	if idx < 0 {
		return nil
	}

	leaving := ctx.Players[idx]
	ctx.Players = slices.Delete(ctx.Players, idx, idx+1)

	if leaving.session != nil {
		leaving.session.detach(ctx.Code)
	}

	if ctx.Round != nil {
		delete(ctx.Round.Hinted, leaving.ID)
		delete(ctx.Round.Voted, leaving.ID)
	}

	zap.L().Info(
		"玩家离开房间",
		zap.String("room_code", ctx.Code),
		zap.String("player_id", leaving.ID),
		zap.String("player_name", leaving.Name),
		zap.Int("remaining", len(ctx.Players)),
	)

	if len(ctx.Players) == 0 {
		return leaving
	}

	if leaving.IsHost {
		promoteHost(ctx)
		ctx.broadcastSnapshot()
	}

	ctx.BroadcastResp(WrapResponse(
		RESP_PLAYER_LEFT,
		PlayerLeftResponse{Name: leaving.Name, Room: ctx.Snapshot()},
	))

	return leaving
}

// promoteHost 将加入最早的剩余玩家设为房主
func promoteHost(ctx *RoomContext) {
	for _, p := range ctx.Players {
		p.IsHost = false
	}

	next := ctx.Players[0]
	next.IsHost = true
	ctx.HostID = next.ID

	zap.L().Info(
		"房主已转移",
		zap.String("room_code", ctx.Code),
		zap.String("host_id", next.ID),
		zap.String("host_name", next.Name),
	)
}

func onToggleReady(ctx *RoomContext, playerID string) error {
	player := ctx.FindPlayer(playerID)
	if player == nil {
		return ErrNotMember
	}

	if ctx.GameStage != STAGE_LOBBY {
		return ErrWrongStage
	}

	player.Ready = !player.Ready
	ctx.broadcastSnapshot()

	return nil
}

func onUpdateSettings(ctx *RoomContext, playerID string, patch SettingsPatch) error {
	if !ctx.IsHost(playerID) {
		// 非房主的设置请求直接忽略
		zap.L().Debug(
			"忽略非房主的设置请求",
			zap.String("room_code", ctx.Code),
			zap.String("player_id", playerID),
		)
		return nil
	}

	if ctx.GameStage != STAGE_LOBBY {
		return ErrGameInProgress
	}

	settings, err := applySettingsPatch(ctx.Settings, patch, ctx.words)
	if err != nil {
		return err
	}

	ctx.Settings = settings
	ctx.broadcastSnapshot()

	return nil
}

func applySettingsPatch(s Settings, patch SettingsPatch, words WordSource) (Settings, error) {
	if patch.Mode != nil {
		if *patch.Mode != MODE_HINT && *patch.Mode != MODE_QUESTION {
			return s, fmt.Errorf("%w: 未知模式 %q", ErrInvalidSettings, *patch.Mode)
		}
		s.Mode = *patch.Mode
	}

	if patch.Category != nil {
		if *patch.Category == "" {
			return s, fmt.Errorf("%w: 分类不能为空", ErrInvalidSettings)
		}
		if !words.HasCategory(*patch.Category) {
			return s, fmt.Errorf("%w: 未知分类 %q", ErrInvalidSettings, *patch.Category)
		}
		s.Category = *patch.Category
	}

	if patch.TurnDuration != nil {
		d := *patch.TurnDuration
		if d < MIN_TURN_DURATION || d > MAX_TURN_DURATION {
			return s, fmt.Errorf("%w: 回合时长必须在 %d 到 %d 秒之间", ErrInvalidSettings, MIN_TURN_DURATION, MAX_TURN_DURATION)
		}
		s.TurnDuration = d
	}

	if patch.TotalRounds != nil {
		r := *patch.TotalRounds
		if r < MIN_TOTAL_ROUNDS || r > MAX_TOTAL_ROUNDS {
			return s, fmt.Errorf("%w: 总轮数必须在 %d 到 %d 之间", ErrInvalidSettings, MIN_TOTAL_ROUNDS, MAX_TOTAL_ROUNDS)
		}
		s.TotalRounds = r
	}

	if patch.CustomWords != nil {
		if len(patch.CustomWords) > MAX_CUSTOM_WORDS {
			return s, fmt.Errorf("%w: 自定义词语最多 %d 个", ErrInvalidSettings, MAX_CUSTOM_WORDS)
		}

		words := make([]string, 0, len(patch.CustomWords))
		for _, w := range patch.CustomWords {
			w = clipText(w, MAX_NAME_LEN)
			if w != "" && !slices.Contains(words, w) {
				words = append(words, w)
			}
		}
		s.CustomWords = words
	}

	return s, nil
}

// onResetScores 由房主在大厅中清空所有玩家的分数
func onResetScores(ctx *RoomContext, playerID string) error {
	if !ctx.IsHost(playerID) {
		return ErrUnauthorized
	}

	for _, p := range ctx.Players {
		p.Score = 0
	}

	ctx.broadcastSnapshot()

	zap.L().Info(
		"房间分数已清零",
		zap.String("room_code", ctx.Code),
		zap.String("host_id", playerID),
	)

	return nil
}

func onChatMessage(ctx *RoomContext, playerID string, message string) error {
	player := ctx.FindPlayer(playerID)
	if player == nil {
		return ErrNotMember
	}

	message = clipText(message, MAX_TEXT_LEN)
	if message == "" {
		return nil
	}

	ctx.BroadcastResp(WrapResponse(
		RESP_CHAT_MESSAGE,
		ChatMessageResponse{
			PlayerName: player.Name,
			Avatar:     player.Avatar,
			Message:    message,
		},
	))

	return nil
}
