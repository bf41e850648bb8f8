package http

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"undercover-be/internal/service/dto"
	"undercover-be/internal/service/game"
	"undercover-be/internal/state"

	"github.com/kataras/iris/v12"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	SNAPSHOT_TIMEOUT = 2 * time.Second
	QR_CODE_SIZE     = 256
)

// joinURL 生成前端加入房间的链接
func joinURL(appState *state.AppState, ctx iris.Context, code string) string {
	base := strings.TrimRight(appState.Cfg.PublicURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s://%s", ctx.Scheme(), ctx.Host())
	}

	return base + "/?room=" + url.QueryEscape(code)
}

func writeRoomError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		ctx.StatusCode(iris.StatusNotFound)
	case errors.Is(err, game.ErrRoomBusy):
		ctx.StatusCode(iris.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.StatusCode(iris.StatusGatewayTimeout)
	default:
		ctx.StatusCode(iris.StatusInternalServerError)
	}

	ctx.JSON(dto.ErrorResponse{Error: err.Error()})
}

func GetRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		code := ctx.Params().Get("code")

		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), SNAPSHOT_TIMEOUT)
		defer cancel()

		snapshot, err := appState.Rooms.Snapshot(reqCtx, code)
		if err != nil {
			writeRoomError(ctx, err)
			return
		}

		ctx.JSON(dto.RoomInfoFrom(snapshot, joinURL(appState, ctx, code)))
	}
}

func GetRoomQRCode(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		code := ctx.Params().Get("code")

		if !appState.Rooms.Exists(code) {
			writeRoomError(ctx, game.ErrRoomNotFound)
			return
		}

		png, err := qrcode.Encode(joinURL(appState, ctx, code), qrcode.Medium, QR_CODE_SIZE)
		if err != nil {
			zap.L().Error("生成二维码失败", zap.String("room_code", code), zap.Error(err))
			writeRoomError(ctx, err)
			return
		}

		ctx.ContentType("image/png")
		ctx.Header("Cache-Control", "no-store")
		ctx.Write(png)
	}
}
