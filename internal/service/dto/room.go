package dto

import (
	"undercover-be/internal/service/game"
	"undercover-be/internal/service/words"
)

// RoomInfo 是加入前查询房间得到的信息，不包含玩家 ID
type RoomInfo struct {
	Code         string        `json:"code"`
	Stage        string        `json:"stage"`
	InGame       bool          `json:"in_game"`
	Joinable     bool          `json:"joinable"`
	CurrentRound int           `json:"current_round"`
	MaxPlayers   int           `json:"max_players"`
	Players      []Player      `json:"players"`
	Settings     game.Settings `json:"settings"`
	JoinURL      string        `json:"join_url"`
}

func RoomInfoFrom(snapshot game.RoomSnapshot, joinURL string) RoomInfo {
	return RoomInfo{
		Code:         snapshot.Code,
		Stage:        snapshot.Stage,
		InGame:       snapshot.InGame,
		Joinable:     !snapshot.InGame && len(snapshot.Players) < game.MAX_PLAYERS,
		CurrentRound: snapshot.CurrentRound,
		MaxPlayers:   game.MAX_PLAYERS,
		Players:      playersFrom(snapshot.Players),
		Settings:     snapshot.Settings,
		JoinURL:      joinURL,
	}
}

type CategoriesResponse struct {
	Categories []words.Category `json:"categories"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
	Uptime string `json:"uptime"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
