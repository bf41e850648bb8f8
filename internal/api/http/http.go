package http

import (
	"context"
	"errors"
	"time"

	"undercover-be/internal/api/http/websocket"
	"undercover-be/internal/service/dto"
	"undercover-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

// NewApp 注册所有路由
func NewApp(appState *state.AppState) *iris.Application {
	app := iris.Default()

	app.Get("/healthz", Health(appState))

	api := app.Party("/api/v1")

	api.Get("/categories", ListCategories(appState))
	api.Get("/rooms/{code:string}", GetRoom(appState))
	api.Get("/rooms/{code:string}/qr", GetRoomQRCode(appState))

	api.Get("/ws", websocket.Serve(appState))

	if dir := appState.Cfg.StaticDir; dir != "" {
		app.HandleDir(
			"/",
			iris.Dir(dir),
			iris.DirOptions{
				IndexName: "index.html",
				SPA:       true,
				Compress:  true,
			},
		)
	}

	return app
}

// RunServer 运行 HTTP 服务直到 ctx 被取消，然后关闭所有房间
func RunServer(ctx context.Context, appState *state.AppState) error {
	app := NewApp(appState)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()

		zap.L().Info("开始关闭服务")

		if err := app.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("关闭 HTTP 服务失败", zap.Error(err))
		}
	}()

	addr := appState.Cfg.Addr()
	zap.L().Info("服务启动", zap.String("addr", addr))

	err := app.Listen(
		addr,
		iris.WithoutInterruptHandler,
		iris.WithoutServerError(iris.ErrServerClosed),
	)

	closeCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	if cerr := appState.Rooms.Close(closeCtx); cerr != nil {
		zap.L().Warn("等待房间关闭超时", zap.Error(cerr))
	}

	if err != nil && !errors.Is(err, iris.ErrServerClosed) {
		return err
	}

	return nil
}

func Health(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.HealthResponse{
			Status: "ok",
			Rooms:  appState.Rooms.Count(),
			Uptime: time.Since(appState.StartedAt).Truncate(time.Second).String(),
		})
	}
}

func ListCategories(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.CategoriesResponse{
			Categories: appState.Words.Categories(),
		})
	}
}
