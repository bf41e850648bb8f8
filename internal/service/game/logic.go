package game

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
)

// 一个房间的生命周期分为以下阶段：
// 1. 大厅（lobby）：玩家加入、准备、房主修改设置并开始游戏
// 2. 揭示（reveal）：每位玩家私下得知自己的身份和词语，计时结束后自动进入提示阶段
// 3. 提示（hints）：每位玩家提交一条提示（或完成一次提问）
// 4. 投票（voting）：每位玩家投票选出最可疑的人
// 5. 卧底反击（spy-chance）：卧底被抓后有一次猜词机会
// 6. 结算（results）：公布结果并计分，由房主进入下一轮或结束游戏
// 房间里没有玩家时进入 closed，房间协程随之退出
const (
	STAGE_LOBBY      = "lobby"
	STAGE_REVEAL     = "reveal"
	STAGE_HINTS      = "hints"
	STAGE_VOTING     = "voting"
	STAGE_SPY_CHANCE = "spy-chance"
	STAGE_RESULTS    = "results"
	STAGE_CLOSED     = "closed"
)

type StageHandler interface {
	Stage() string

	OnEnter(ctx *RoomContext)
	OnHandle(ctx *RoomContext, req RequestWrapper) error
	OnExit(ctx *RoomContext)

	SetOnSwitch(func(nextStage string))
}

// baseStageHandler 实现所有阶段共享的部分
type baseStageHandler struct {
	onSwitch func(string)
}

func (b *baseStageHandler) SetOnSwitch(onSwitch func(string)) {
	b.onSwitch = onSwitch
}

func (b *baseStageHandler) OnExit(ctx *RoomContext) {
	ctx.ClearTimeout()
}

func senderID(req RequestWrapper) string {
	if req.Session == nil {
		return ""
	}

	return req.Session.ID
}

// handleShared 处理在任何阶段都可能出现的请求，afterLeave 用于各阶段的离开恢复逻辑
func (b *baseStageHandler) handleShared(
	ctx *RoomContext,
	req RequestWrapper,
	afterLeave func(ctx *RoomContext, left *Player),
) error {
	if jreq := TryUnwrapJoinRoomRequest(req); jreq != nil {
		if req.Session == nil {
			return ErrInvalidRequest
		}
		return onPlayerJoin(ctx, req.Session, jreq)
	}

	if lreq := TryUnwrapLeaveRoomRequest(req); lreq != nil {
		left := onPlayerLeave(ctx, senderID(req))
		if left == nil {
			return ErrNotMember
		}

		if len(ctx.Players) == 0 {
			b.onSwitch(STAGE_CLOSED)
			return nil
		}

		if afterLeave != nil {
			afterLeave(ctx, left)
		}
		return nil
	}

	if rreq := TryUnwrapToggleReadyRequest(req); rreq != nil {
		return onToggleReady(ctx, senderID(req))
	}

	if sreq := TryUnwrapUpdateSettingsRequest(req); sreq != nil {
		return onUpdateSettings(ctx, senderID(req), sreq.Settings)
	}

	if creq := TryUnwrapChatMessageRequest(req); creq != nil {
		return onChatMessage(ctx, senderID(req), creq.Message)
	}

	if sreq := TryUnwrapStartGameRequest(req); sreq != nil {
		if !ctx.IsHost(senderID(req)) {
			return ErrUnauthorized
		}
		return ErrGameInProgress
	}

	if rreq := TryUnwrapResetScoresRequest(req); rreq != nil {
		if !ctx.IsHost(senderID(req)) {
			return ErrUnauthorized
		}
		return ErrGameInProgress
	}

	if treq := TryUnwrapTimeoutRequest(req); treq != nil {
		return fmt.Errorf("%w: stage=%s generation=%d", ErrStaleTimer, treq.Stage, treq.Generation)
	}

	return ErrWrongStage
}

// isLiveTimeout 判断超时请求是否属于当前阶段和当前这一轮
func isLiveTimeout(ctx *RoomContext, tmo *TimeoutRequest) bool {
	return tmo.Stage == ctx.GameStage && tmo.Generation == ctx.Generation
}

// abortRound 卧底中途离开时直接中止本轮，不计分
func (b *baseStageHandler) abortRound(ctx *RoomContext, left *Player) {
	zap.L().Info(
		"卧底离开，本轮中止",
		zap.String("room_code", ctx.Code),
		zap.String("spy_id", left.ID),
		zap.Int("round", ctx.CurrentRound),
	)

	ctx.BroadcastResp(WrapErrResponse("卧底离开了游戏，本轮结束"))
	b.onSwitch(STAGE_LOBBY)
}

// 大厅阶段
type lobbyStageHandler struct {
	baseStageHandler
}

func NewLobbyStageHandler() *lobbyStageHandler {
	return &lobbyStageHandler{}
}

func (h *lobbyStageHandler) Stage() string {
	return STAGE_LOBBY
}

func (h *lobbyStageHandler) OnEnter(ctx *RoomContext) {
	// 从一局游戏返回大厅时丢弃回合状态
	if ctx.Round == nil {
		return
	}

	ctx.Round = nil
	ctx.Generation++

	for _, p := range ctx.Players {
		p.AskedTarget = ""
	}

	ctx.broadcastSnapshot()
}

func (h *lobbyStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if sreq := TryUnwrapStartGameRequest(req); sreq != nil {
		if !ctx.IsHost(senderID(req)) {
			return ErrUnauthorized
		}

		if len(ctx.Players) < MIN_PLAYERS {
			return ErrNotEnoughPlayers
		}

		// 上一局已经打满时重新计数
		if ctx.CurrentRound >= ctx.Settings.TotalRounds {
			ctx.CurrentRound = 0
		}

		h.onSwitch(STAGE_REVEAL)
		return nil
	}

	if rreq := TryUnwrapResetScoresRequest(req); rreq != nil {
		return onResetScores(ctx, senderID(req))
	}

	return h.handleShared(ctx, req, nil)
}

// 揭示阶段
type revealStageHandler struct {
	baseStageHandler
}

func NewRevealStageHandler() *revealStageHandler {
	return &revealStageHandler{}
}

func (h *revealStageHandler) Stage() string {
	return STAGE_REVEAL
}

func (h *revealStageHandler) OnEnter(ctx *RoomContext) {
	startRound(ctx)

	// 揭示阶段由服务端计时结束，不依赖玩家操作
	ctx.SetTimeout(ctx.timing.revealDuration(ctx.Settings.TurnDuration))
}

// startRound 抽词、抽卧底、分配提问对象，并私下告知每位玩家自己的身份
func startRound(ctx *RoomContext) {
	ctx.CurrentRound++
	ctx.Generation++

	word := ctx.words.Next(ctx.Settings.Category, ctx.Settings.CustomWords)
	spy := ctx.Players[rand.IntN(len(ctx.Players))]

	ctx.Round = newRoundState(word, spy)

	for i, p := range ctx.Players {
		p.AskedTarget = ""
		if ctx.Settings.Mode == MODE_QUESTION {
			p.AskedTarget = ctx.Players[pickTarget(len(ctx.Players), i)].Name
		}
	}

	roundPlayers := make([]RoundPlayer, 0, len(ctx.Players))
	for _, p := range ctx.Players {
		roundPlayers = append(roundPlayers, RoundPlayer{Name: p.Name, Avatar: p.Avatar})
	}

	for _, p := range ctx.Players {
		resp := RoundStartResponse{
			Round:        ctx.CurrentRound,
			TotalRounds:  ctx.Settings.TotalRounds,
			Role:         ROLE_NORMAL,
			Category:     ctx.Settings.Category,
			Mode:         ctx.Settings.Mode,
			TurnDuration: ctx.Settings.TurnDuration,
			Players:      roundPlayers,
			Target:       p.AskedTarget,
		}

		if p.ID == spy.ID {
			resp.Role = ROLE_SPY
		} else {
			w := word
			resp.Word = &w
		}

		ctx.UnicastResp(p.ID, WrapResponse(RESP_ROUND_START, resp))
	}

	zap.L().Info(
		"新一轮开始",
		zap.String("room_code", ctx.Code),
		zap.Int("round", ctx.CurrentRound),
		zap.Int("players", len(ctx.Players)),
		zap.Uint64("generation", ctx.Generation),
	)
}

func (h *revealStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if treq := TryUnwrapTimeoutRequest(req); treq != nil && isLiveTimeout(ctx, treq) {
		h.onSwitch(STAGE_HINTS)
		return nil
	}

	return h.handleShared(ctx, req, h.afterLeave)
}

func (h *revealStageHandler) afterLeave(ctx *RoomContext, left *Player) {
	if left.ID == ctx.Round.SpyID {
		h.abortRound(ctx, left)
	}
}

// 提示阶段
type hintStageHandler struct {
	baseStageHandler
}

func NewHintStageHandler() *hintStageHandler {
	return &hintStageHandler{}
}

func (h *hintStageHandler) Stage() string {
	return STAGE_HINTS
}

func (h *hintStageHandler) OnEnter(ctx *RoomContext) {
	resp := PhaseChangeResponse{Phase: STAGE_HINTS}

	if ctx.Settings.Mode == MODE_QUESTION {
		resp.Targets = make(map[string]string, len(ctx.Players))
		for _, p := range ctx.Players {
			resp.Targets[p.ID] = p.AskedTarget
		}
	}

	ctx.BroadcastResp(WrapResponse(RESP_PHASE_CHANGE, resp))
}

func (h *hintStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if hreq := TryUnwrapSubmitHintRequest(req); hreq != nil {
		player := ctx.FindPlayer(senderID(req))
		if player == nil {
			return ErrNotMember
		}

		round := ctx.Round
		if _, done := round.Hinted[player.ID]; done {
			return ErrDuplicateHint
		}

		text := hintText(ctx, player, hreq.Text)

		round.Hints = append(round.Hints, Hint{
			PlayerName: player.Name,
			Avatar:     player.Avatar,
			Text:       text,
		})
		round.Hinted[player.ID] = struct{}{}

		ctx.BroadcastResp(WrapResponse(
			RESP_HINT_SUBMITTED,
			HintSubmittedResponse{
				PlayerName: player.Name,
				Avatar:     player.Avatar,
				Hint:       text,
				Total:      len(round.Hinted),
				Needed:     len(ctx.Players),
			},
		))

		if allHinted(ctx) {
			h.onSwitch(STAGE_VOTING)
		}

		return nil
	}

	return h.handleShared(ctx, req, h.afterLeave)
}

func (h *hintStageHandler) afterLeave(ctx *RoomContext, left *Player) {
	if left.ID == ctx.Round.SpyID {
		h.abortRound(ctx, left)
		return
	}

	// 不再等待已经离开的玩家
	if allHinted(ctx) {
		h.onSwitch(STAGE_VOTING)
	}
}

func hintText(ctx *RoomContext, player *Player, raw string) string {
	if ctx.Settings.Mode == MODE_QUESTION {
		target := player.AskedTarget
		if target == "" {
			target = "某位玩家"
		}
		return fmt.Sprintf("向 %s 提问", target)
	}

	text := clipText(raw, MAX_TEXT_LEN)
	if text == "" {
		return "（没有给出提示）"
	}

	return text
}

func allHinted(ctx *RoomContext) bool {
	for _, p := range ctx.Players {
		if _, ok := ctx.Round.Hinted[p.ID]; !ok {
			return false
		}
	}

	return true
}

// 投票阶段
type voteStageHandler struct {
	baseStageHandler
}

func NewVoteStageHandler() *voteStageHandler {
	return &voteStageHandler{}
}

func (h *voteStageHandler) Stage() string {
	return STAGE_VOTING
}

func (h *voteStageHandler) OnEnter(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(
		RESP_PHASE_CHANGE,
		PhaseChangeResponse{
			Phase: STAGE_VOTING,
			Hints: ctx.Round.Hints,
		},
	))
}

func (h *voteStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if vreq := TryUnwrapSubmitVoteRequest(req); vreq != nil {
		voter := ctx.FindPlayer(senderID(req))
		if voter == nil {
			return ErrNotMember
		}

		round := ctx.Round

		// 按 ID 去重，容忍同名玩家
		if _, alreadyVoted := round.Voted[voter.ID]; alreadyVoted {
			return ErrDuplicateVote
		}

		if ctx.FindPlayerByName(vreq.CandidateName) == nil {
			return ErrUnknownCandidate
		}

		recordVote(round, voter.ID, vreq.CandidateName)

		ctx.BroadcastResp(WrapResponse(
			RESP_VOTE_CAST,
			VoteCastResponse{
				Total:  len(round.Voted),
				Needed: len(ctx.Players),
			},
		))

		if allVoted(ctx) {
			h.resolve(ctx)
		}

		return nil
	}

	return h.handleShared(ctx, req, h.afterLeave)
}

func (h *voteStageHandler) afterLeave(ctx *RoomContext, left *Player) {
	if left.ID == ctx.Round.SpyID {
		h.abortRound(ctx, left)
		return
	}

	if allVoted(ctx) {
		h.resolve(ctx)
	}
}

// resolve 卧底被抓则进入反击窗口，否则直接结算为卧底逃脱
func (h *voteStageHandler) resolve(ctx *RoomContext) {
	round := ctx.Round
	suspect := mostSuspected(round)

	zap.L().Info(
		"投票结束",
		zap.String("room_code", ctx.Code),
		zap.String("most_suspected", suspect),
		zap.Any("votes", round.Votes),
	)

	if suspect == round.SpyName {
		round.SpyCaught = true
		h.onSwitch(STAGE_SPY_CHANCE)
		return
	}

	h.onSwitch(STAGE_RESULTS)
}

func allVoted(ctx *RoomContext) bool {
	for _, p := range ctx.Players {
		if _, ok := ctx.Round.Voted[p.ID]; !ok {
			return false
		}
	}

	return true
}

// 卧底反击阶段
type spyChanceStageHandler struct {
	baseStageHandler
}

func NewSpyChanceStageHandler() *spyChanceStageHandler {
	return &spyChanceStageHandler{}
}

func (h *spyChanceStageHandler) Stage() string {
	return STAGE_SPY_CHANCE
}

func (h *spyChanceStageHandler) OnEnter(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(
		RESP_SPY_CHANCE,
		SpyChanceResponse{
			SpyName: ctx.Round.SpyName,
			Votes:   cloneVotes(ctx.Round),
			Seconds: int(ctx.timing.SpyChanceWindow.Seconds()),
		},
	))

	ctx.SetTimeout(ctx.timing.SpyChanceWindow)
}

func (h *spyChanceStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if greq := TryUnwrapSpyGuessRequest(req); greq != nil {
		if ctx.FindPlayer(senderID(req)) == nil {
			return ErrNotMember
		}

		if senderID(req) != ctx.Round.SpyID {
			return ErrNotSpy
		}

		ctx.Round.SpyGuessedCorrectly = clipText(greq.Text, MAX_TEXT_LEN) == ctx.Round.Word
		h.onSwitch(STAGE_RESULTS)
		return nil
	}

	if treq := TryUnwrapTimeoutRequest(req); treq != nil && isLiveTimeout(ctx, treq) {
		// 窗口结束仍未猜词，按猜错处理
		h.onSwitch(STAGE_RESULTS)
		return nil
	}

	return h.handleShared(ctx, req, h.afterLeave)
}

func (h *spyChanceStageHandler) afterLeave(ctx *RoomContext, left *Player) {
	if left.ID == ctx.Round.SpyID {
		h.abortRound(ctx, left)
	}
}

// 结算阶段
type resultStageHandler struct {
	baseStageHandler
}

func NewResultStageHandler() *resultStageHandler {
	return &resultStageHandler{}
}

func (h *resultStageHandler) Stage() string {
	return STAGE_RESULTS
}

func (h *resultStageHandler) OnEnter(ctx *RoomContext) {
	round := ctx.Round
	awarded := applyScores(ctx)

	ctx.BroadcastResp(WrapResponse(
		RESP_ROUND_RESULTS,
		RoundResultsResponse{
			SpyCaught:           round.SpyCaught,
			SpyGuessedCorrectly: round.SpyGuessedCorrectly,
			SpyName:             round.SpyName,
			Word:                round.Word,
			Votes:               cloneVotes(round),
			Players:             ctx.Standings(),
			Round:               ctx.CurrentRound,
			TotalRounds:         ctx.Settings.TotalRounds,
			HasNextRound:        ctx.CurrentRound < ctx.Settings.TotalRounds,
		},
	))

	zap.L().Info(
		"本轮结算完成",
		zap.String("room_code", ctx.Code),
		zap.Int("round", ctx.CurrentRound),
		zap.Bool("spy_caught", round.SpyCaught),
		zap.Bool("spy_guessed", round.SpyGuessedCorrectly),
		zap.Int("awarded", awarded),
	)
}

func (h *resultStageHandler) OnHandle(ctx *RoomContext, req RequestWrapper) error {
	if nreq := TryUnwrapNextRoundRequest(req); nreq != nil {
		if !ctx.IsHost(senderID(req)) {
			return ErrUnauthorized
		}

		if ctx.CurrentRound >= ctx.Settings.TotalRounds {
			h.endGame(ctx)
			return nil
		}

		if len(ctx.Players) < MIN_PLAYERS {
			// 人数不足时提前结束本局，回到大厅等待新玩家加入
			ctx.UnicastResp(ctx.HostID, WrapErrResponse(ErrNotEnoughPlayers.Error()))
			h.endGame(ctx)
			return nil
		}

		h.onSwitch(STAGE_REVEAL)
		return nil
	}

	// 分数已经结算，此时离开的玩家不影响本轮
	return h.handleShared(ctx, req, nil)
}

// endGame 公布最终排名，分数保留，回合数清零后回到大厅
func (h *resultStageHandler) endGame(ctx *RoomContext) {
	ctx.BroadcastResp(WrapResponse(
		RESP_GAME_OVER,
		GameOverResponse{Players: finalStandings(ctx)},
	))

	zap.L().Info(
		"本局游戏结束",
		zap.String("room_code", ctx.Code),
		zap.Int("rounds_played", ctx.CurrentRound),
		zap.Int("players", len(ctx.Players)),
	)

	ctx.CurrentRound = 0
	h.onSwitch(STAGE_LOBBY)
}
