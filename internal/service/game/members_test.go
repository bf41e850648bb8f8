package game

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_DuplicateNamesGetSuffix(t *testing.T) {
	tr := newTestRoom(t, 1)

	for i := 1; i <= 3; i++ {
		sess := NewSession(fmt.Sprintf("dup%d", i), 16)
		require.NoError(t, tr.do(sess, REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: "Alice"}))
	}

	seen := make(map[string]struct{})
	for _, p := range tr.m.ctx.Players {
		assert.True(t, strings.HasPrefix(p.Name, "Alice"))
		seen[p.Name] = struct{}{}
	}
	assert.Len(t, seen, 4)
}

func TestJoin_BlankNameGetsDefault(t *testing.T) {
	tr := newTestRoom(t, 1)

	sess := NewSession("blank", 16)
	require.NoError(t, tr.do(sess, REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: "   "}))

	assert.Equal(t, "玩家", tr.nameOf(sess))
}

func TestJoin_RoomFull(t *testing.T) {
	tr := newTestRoom(t, MAX_PLAYERS)

	late := NewSession("late", 16)
	err := tr.do(late, REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: "Late"})

	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, tr.m.ctx.Players, MAX_PLAYERS)
	assert.Empty(t, late.Rooms())
}

func TestJoin_GameInProgress(t *testing.T) {
	tr := newTestRoom(t, 3)
	tr.startRound()

	late := NewSession("late", 16)
	tr.m.handle(RequestWrapper{
		ReqType: REQ_JOIN_ROOM,
		Data:    mustMarshal(JoinRoomRequest{Code: "12345", Name: "Late"}),
		Session: late,
	})

	errs := ofType(drain(late), RESP_ERROR)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrGameInProgress.Error(), errs[0].ErrMsg)
	assert.Len(t, tr.m.ctx.Players, 3)
}

func TestJoin_NotifiesOthers(t *testing.T) {
	tr := newTestRoom(t, 2)

	sess := NewSession("p2", 16)
	require.NoError(t, tr.do(sess, REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: "Carol"}))

	joined := ofType(drain(sess), RESP_ROOM_JOINED)
	require.Len(t, joined, 1)
	assert.Equal(t, "Carol", joined[0].Data.(RoomJoinedResponse).You.Name)
	assert.Len(t, joined[0].Data.(RoomJoinedResponse).Room.Players, 3)

	for _, other := range tr.sessions {
		resps := drain(other)
		assert.Len(t, ofType(resps, RESP_PLAYER_JOINED), 1)
		assert.Empty(t, ofType(resps, RESP_ROOM_JOINED))
	}

	assert.Equal(t, []string{"12345"}, sess.Rooms())
}

func TestJoin_SameSessionTwice(t *testing.T) {
	tr := newTestRoom(t, 2)

	require.NoError(t, tr.do(tr.sessions[1], REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: "Again"}))

	assert.Len(t, tr.m.ctx.Players, 2)
	assert.Len(t, ofType(drain(tr.sessions[1]), RESP_ROOM_JOINED), 1)
	assert.Empty(t, ofType(drain(tr.host()), RESP_PLAYER_JOINED))
}

func TestStart_RequiresHost(t *testing.T) {
	tr := newTestRoom(t, 3)

	err := tr.do(tr.sessions[1], REQ_START_GAME, RoomRequest{Code: "12345"})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, STAGE_LOBBY, tr.stage())
}

func TestStart_NotEnoughPlayers(t *testing.T) {
	tr := newTestRoom(t, 2)

	err := tr.do(tr.host(), REQ_START_GAME, RoomRequest{Code: "12345"})

	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, STAGE_LOBBY, tr.stage())
	assert.Nil(t, tr.m.ctx.Round)
}

func TestStart_DuringRound(t *testing.T) {
	tr := newTestRoom(t, 3)
	tr.startRound()

	err := tr.do(tr.host(), REQ_START_GAME, RoomRequest{Code: "12345"})

	assert.ErrorIs(t, err, ErrGameInProgress)
	assert.Equal(t, 1, tr.m.ctx.CurrentRound)
}

func TestNextRound_RequiresHost(t *testing.T) {
	tr := newTestRoom(t, 3)
	tr.startRound()
	tr.allHint()
	tr.allVote(tr.nameOf(tr.nonSpies()[0]))

	err := tr.do(tr.sessions[1], REQ_NEXT_ROUND, RoomRequest{Code: "12345"})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, STAGE_RESULTS, tr.stage())
}

func TestSettings_NonHostIgnored(t *testing.T) {
	tr := newTestRoom(t, 3)

	rounds := 7
	err := tr.do(tr.sessions[1], REQ_UPDATE_SETTINGS, UpdateSettingsRequest{
		Code:     "12345",
		Settings: SettingsPatch{TotalRounds: &rounds},
	})

	assert.NoError(t, err)
	assert.Equal(t, DEFAULT_TOTAL_ROUNDS, tr.m.ctx.Settings.TotalRounds)
}

func TestSettings_Validation(t *testing.T) {
	badMode := "mime"
	tooShort := MIN_TURN_DURATION - 1
	tooMany := MAX_TOTAL_ROUNDS + 1
	empty := ""
	unknown := unknownCategory

	tests := []struct {
		name  string
		patch SettingsPatch
	}{
		{name: "unknown mode", patch: SettingsPatch{Mode: &badMode}},
		{name: "turn too short", patch: SettingsPatch{TurnDuration: &tooShort}},
		{name: "too many rounds", patch: SettingsPatch{TotalRounds: &tooMany}},
		{name: "empty category", patch: SettingsPatch{Category: &empty}},
		{name: "unknown category", patch: SettingsPatch{Category: &unknown}},
		{name: "too many custom words", patch: SettingsPatch{CustomWords: make([]string, MAX_CUSTOM_WORDS+1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := applySettingsPatch(DefaultSettings(), tc.patch, fixedWords(testWord))
			assert.ErrorIs(t, err, ErrInvalidSettings)
			assert.True(t, IsPublic(err))
		})
	}
}

func TestSettings_CustomWordsNormalized(t *testing.T) {
	s, err := applySettingsPatch(DefaultSettings(), SettingsPatch{
		CustomWords: []string{" castle ", "castle", "", "bridge"},
	}, fixedWords(testWord))

	require.NoError(t, err)
	assert.Equal(t, []string{"castle", "bridge"}, s.CustomWords)
	assert.Equal(t, DEFAULT_MODE, s.Mode)
}

func TestSettings_LockedDuringRound(t *testing.T) {
	tr := newTestRoom(t, 3)
	tr.startRound()

	rounds := 5
	err := tr.do(tr.host(), REQ_UPDATE_SETTINGS, UpdateSettingsRequest{
		Code:     "12345",
		Settings: SettingsPatch{TotalRounds: &rounds},
	})

	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestToggleReady(t *testing.T) {
	tr := newTestRoom(t, 2)

	require.NoError(t, tr.do(tr.sessions[1], REQ_TOGGLE_READY, RoomRequest{Code: "12345"}))
	assert.True(t, tr.m.ctx.FindPlayer("p1").Ready)

	require.NoError(t, tr.do(tr.sessions[1], REQ_TOGGLE_READY, RoomRequest{Code: "12345"}))
	assert.False(t, tr.m.ctx.FindPlayer("p1").Ready)

	assert.Len(t, ofType(drain(tr.host()), RESP_ROOM_UPDATED), 2)
}

func TestChat_Broadcast(t *testing.T) {
	tr := newTestRoom(t, 3)

	require.NoError(t, tr.do(tr.sessions[2], REQ_CHAT_MESSAGE, ChatMessageRequest{Code: "12345", Message: " hi all "}))

	for _, sess := range tr.sessions {
		msgs := ofType(drain(sess), RESP_CHAT_MESSAGE)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hi all", msgs[0].Data.(ChatMessageResponse).Message)
		assert.Equal(t, "Carol", msgs[0].Data.(ChatMessageResponse).PlayerName)
	}

	outsider := NewSession("outsider", 4)
	assert.ErrorIs(t, tr.do(outsider, REQ_CHAT_MESSAGE, ChatMessageRequest{Code: "12345", Message: "hey"}), ErrNotMember)
}

func TestLeave_HostPromotesNextPlayer(t *testing.T) {
	tr := newTestRoom(t, 3)

	require.NoError(t, tr.do(tr.host(), REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))

	assert.Equal(t, "p1", tr.m.ctx.HostID)
	assert.True(t, tr.m.ctx.FindPlayer("p1").IsHost)
	assert.Empty(t, tr.host().Rooms())

	resps := drain(tr.sessions[2])
	left := ofType(resps, RESP_PLAYER_LEFT)
	require.Len(t, left, 1)
	assert.Equal(t, "Alice", left[0].Data.(PlayerLeftResponse).Name)
	assert.Equal(t, "p1", left[0].Data.(PlayerLeftResponse).Room.HostID)

	// 新房主可以开始游戏
	sess := NewSession("p3", 16)
	require.NoError(t, tr.do(sess, REQ_JOIN_ROOM, JoinRoomRequest{Code: "12345", Name: "Dan"}))
	require.NoError(t, tr.do(tr.sessions[1], REQ_START_GAME, RoomRequest{Code: "12345"}))
	assert.Equal(t, STAGE_REVEAL, tr.stage())
}

func TestLeave_LastPlayerClosesRoom(t *testing.T) {
	tr := newTestRoom(t, 2)

	require.NoError(t, tr.do(tr.sessions[1], REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))
	assert.Equal(t, STAGE_LOBBY, tr.stage())

	require.NoError(t, tr.do(tr.host(), REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))
	assert.Equal(t, STAGE_CLOSED, tr.stage())
	assert.Empty(t, tr.m.ctx.Players)
}

func TestLeave_NonMember(t *testing.T) {
	tr := newTestRoom(t, 2)

	err := tr.do(NewSession("ghost", 4), REQ_LEAVE_ROOM, RoomRequest{Code: "12345"})

	assert.ErrorIs(t, err, ErrNotMember)
	assert.Len(t, tr.m.ctx.Players, 2)
}

func TestLeave_SpyAbortsRound(t *testing.T) {
	for _, stage := range []string{STAGE_REVEAL, STAGE_HINTS, STAGE_VOTING, STAGE_SPY_CHANCE} {
		t.Run(stage, func(t *testing.T) {
			tr := newTestRoom(t, 4)

			require.NoError(t, tr.do(tr.host(), REQ_START_GAME, RoomRequest{Code: "12345"}))
			if stage != STAGE_REVEAL {
				tr.fireTimers()
			}
			if stage == STAGE_VOTING || stage == STAGE_SPY_CHANCE {
				tr.allHint()
			}
			spy := tr.spy()
			if stage == STAGE_SPY_CHANCE {
				tr.allVote(tr.nameOf(spy))
			}
			require.Equal(t, stage, tr.stage())

			gen := tr.m.ctx.Generation
			innocents := tr.nonSpies()
			observer := innocents[0]
			drain(observer)

			require.NoError(t, tr.do(spy, REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))

			assert.Equal(t, STAGE_LOBBY, tr.stage())
			assert.Nil(t, tr.m.ctx.Round)
			assert.Greater(t, tr.m.ctx.Generation, gen)
			assert.Empty(t, tr.sched.active())

			resps := drain(observer)
			assert.NotEmpty(t, ofType(resps, RESP_ERROR))
			assert.NotEmpty(t, ofType(resps, RESP_ROOM_UPDATED))
			for _, sess := range innocents {
				assert.Zero(t, scoreOf(tr, sess))
			}
		})
	}
}

func TestLeave_HintsAdvanceWithoutDeparted(t *testing.T) {
	tr := newTestRoom(t, 4)
	tr.startRound()

	innocents := tr.nonSpies()
	leaver := innocents[0]

	for _, sess := range tr.members() {
		if sess != leaver {
			require.NoError(t, tr.do(sess, REQ_SUBMIT_HINT, SubmitHintRequest{Code: "12345", Text: "x"}))
		}
	}
	require.Equal(t, STAGE_HINTS, tr.stage())

	require.NoError(t, tr.do(leaver, REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))

	assert.Equal(t, STAGE_VOTING, tr.stage())
}

func TestLeave_VotingResolvesWithoutDeparted(t *testing.T) {
	tr := newTestRoom(t, 4)
	tr.startRound()
	tr.allHint()

	spy := tr.spy()
	leaver := tr.nonSpies()[0]

	// 离开前投出的票仍然计入
	require.NoError(t, tr.do(leaver, REQ_SUBMIT_VOTE, SubmitVoteRequest{Code: "12345", CandidateName: tr.nameOf(spy)}))
	for _, sess := range tr.members() {
		if sess != leaver && sess != tr.nonSpies()[1] {
			require.NoError(t, tr.do(sess, REQ_SUBMIT_VOTE, SubmitVoteRequest{Code: "12345", CandidateName: tr.nameOf(spy)}))
		}
	}
	last := tr.nonSpies()[1]
	require.NoError(t, tr.do(leaver, REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))
	require.Equal(t, STAGE_VOTING, tr.stage())

	require.NoError(t, tr.do(last, REQ_SUBMIT_VOTE, SubmitVoteRequest{Code: "12345", CandidateName: tr.nameOf(spy)}))

	assert.Equal(t, STAGE_SPY_CHANCE, tr.stage())
	assert.Equal(t, 4, tr.m.ctx.Round.Votes[tr.nameOf(spy)])
}

func TestLeave_DuringResultsKeepsScores(t *testing.T) {
	tr := newTestRoom(t, 4)
	tr.startRound()
	tr.allHint()

	spy := tr.spy()
	tr.allVote(tr.nameOf(tr.nonSpies()[0]))
	require.Equal(t, STAGE_RESULTS, tr.stage())

	require.NoError(t, tr.do(spy, REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))

	assert.Equal(t, STAGE_RESULTS, tr.stage())
	assert.NotNil(t, tr.m.ctx.Round)
}

func TestLeave_RevealContinuesWithoutDeparted(t *testing.T) {
	tr := newTestRoom(t, 4)
	require.NoError(t, tr.do(tr.host(), REQ_START_GAME, RoomRequest{Code: "12345"}))
	require.Equal(t, STAGE_REVEAL, tr.stage())

	gen := tr.m.ctx.Generation
	leaver := tr.nonSpies()[0]
	require.NoError(t, tr.do(leaver, REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))

	assert.Equal(t, STAGE_REVEAL, tr.stage())
	assert.Equal(t, gen, tr.m.ctx.Generation)
	require.NotNil(t, tr.m.ctx.Round)

	tr.fireTimers()
	require.Equal(t, STAGE_HINTS, tr.stage())

	tr.allHint()
	assert.Len(t, tr.m.ctx.Round.Hints, 3)
}

func TestLeave_SpyChanceFinalizesWithoutDeparted(t *testing.T) {
	tr := newTestRoom(t, 4)
	tr.startRound()
	tr.allHint()

	spy := tr.spy()
	tr.allVote(tr.nameOf(spy))
	require.Equal(t, STAGE_SPY_CHANCE, tr.stage())

	leaver := tr.nonSpies()[0]
	require.NoError(t, tr.do(leaver, REQ_LEAVE_ROOM, RoomRequest{Code: "12345"}))

	assert.Equal(t, STAGE_SPY_CHANCE, tr.stage())
	assert.Equal(t, []time.Duration{15 * time.Second}, tr.sched.active())

	tr.fireTimers()
	require.Equal(t, STAGE_RESULTS, tr.stage())

	remaining := tr.nonSpies()
	require.Len(t, remaining, 2)
	for _, sess := range remaining {
		assert.Equal(t, SCORE_INSIDER_WIN, scoreOf(tr, sess))
	}
	assert.Equal(t, 0, scoreOf(tr, spy))
	assert.Equal(t, 2*SCORE_INSIDER_WIN, totalScore(tr))
}

func TestResetScores(t *testing.T) {
	tr := newTestRoom(t, 3)
	for _, p := range tr.m.ctx.Players {
		p.Score = 7
	}

	// 只有房主可以清零
	err := tr.do(tr.sessions[1], REQ_RESET_SCORES, RoomRequest{Code: "12345"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 21, totalScore(tr))

	require.NoError(t, tr.do(tr.host(), REQ_RESET_SCORES, RoomRequest{Code: "12345"}))
	assert.Zero(t, totalScore(tr))

	updates := ofType(drain(tr.sessions[2]), RESP_ROOM_UPDATED)
	require.NotEmpty(t, updates)
	for _, p := range updates[len(updates)-1].Data.(RoomUpdatedResponse).Room.Players {
		assert.Zero(t, p.Score)
	}
}

func TestResetScores_LockedDuringRound(t *testing.T) {
	tr := newTestRoom(t, 3)
	tr.startRound()

	assert.ErrorIs(t, tr.do(tr.host(), REQ_RESET_SCORES, RoomRequest{Code: "12345"}), ErrGameInProgress)
	assert.ErrorIs(t, tr.do(tr.sessions[1], REQ_RESET_SCORES, RoomRequest{Code: "12345"}), ErrUnauthorized)
}
