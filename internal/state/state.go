package state

import (
	"time"

	"undercover-be/internal/config"
	"undercover-be/internal/service"
	"undercover-be/internal/service/game"
	"undercover-be/internal/service/words"
)

type AppState struct {
	Cfg         *config.AppConfig
	Words       *words.Provider
	Rooms       *service.RoomRegistry
	Coordinator *service.SessionCoordinator

	StartedAt time.Time
}

// NewAppState 根据配置组装各个服务
func NewAppState(cfg *config.AppConfig) *AppState {
	provider := words.New()

	rooms := service.NewRoomRegistry(service.RegistryOptions{
		Machine: game.MachineOptions{
			Words:     provider,
			Scheduler: game.RealScheduler(),
			Timing: game.Timing{
				TurnUnit:        cfg.TurnUnit,
				RevealGrace:     cfg.RevealGrace,
				SpyChanceWindow: cfg.SpyChanceWindow,
			},
		},
		IdleTimeout: cfg.RoomIdleTimeout,
	})

	return &AppState{
		Cfg:         cfg,
		Words:       provider,
		Rooms:       rooms,
		Coordinator: service.NewSessionCoordinator(rooms),
		StartedAt:   time.Now(),
	}
}
