package game

import (
	"cmp"
	"maps"
	"slices"
)

const (
	SCORE_INSIDER_WIN = 2
	SCORE_SPY_WIN     = 3
)

// recordVote 记录一票，调用方负责去重
func recordVote(round *RoundState, voterID, candidate string) {
	round.Voted[voterID] = struct{}{}

	if _, seen := round.Votes[candidate]; !seen {
		round.VoteOrder = append(round.VoteOrder, candidate)
	}
	round.Votes[candidate]++
}

// mostSuspected 返回得票最多的候选人
//
// 平票时不做特殊处理：按候选人第一次得票的顺序遍历，只有严格更多才替换，
// 因此最先出现的最高票者胜出。
func mostSuspected(round *RoundState) string {
	best := ""
	maxVotes := 0

	for _, name := range round.VoteOrder {
		if count := round.Votes[name]; count > maxVotes {
			maxVotes = count
			best = name
		}
	}

	return best
}

// applyScores 按本轮结果为房间内的玩家加分，返回本轮发出的总分
func applyScores(ctx *RoomContext) int {
	round := ctx.Round
	awarded := 0

	if round.SpyCaught && !round.SpyGuessedCorrectly {
		for _, p := range ctx.Players {
			if p.ID != round.SpyID {
				p.Score += SCORE_INSIDER_WIN
				awarded += SCORE_INSIDER_WIN
			}
		}
		return awarded
	}

	if spy := ctx.FindPlayer(round.SpyID); spy != nil {
		spy.Score += SCORE_SPY_WIN
		awarded += SCORE_SPY_WIN
	}

	return awarded
}

// finalStandings 按分数从高到低排序，同分保持加入顺序
func finalStandings(ctx *RoomContext) []Standing {
	standings := ctx.Standings()
	slices.SortStableFunc(standings, func(a, b Standing) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return standings
}

func cloneVotes(round *RoundState) map[string]int {
	return maps.Clone(round.Votes)
}
