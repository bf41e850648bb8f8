package dto

import "undercover-be/internal/service/game"

// 房间查询接口中的玩家信息
type Player struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
	IsHost bool   `json:"is_host"`
}

func playersFrom(views []game.PlayerView) []Player {
	players := make([]Player, 0, len(views))
	for _, v := range views {
		players = append(players, Player{
			Name:   v.Name,
			Avatar: v.Avatar,
			Score:  v.Score,
			IsHost: v.IsHost,
		})
	}

	return players
}
