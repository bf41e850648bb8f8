package websocket

import (
	"encoding/json"
	"time"

	"undercover-be/internal/service/game"
	"undercover-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Serve 为每条连接创建一个会话，连接上的请求交给 SessionCoordinator 处理
func Serve(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			return
		}

		defer conn.Close()

		conn.SetReadLimit(MAX_MESSAGE_SIZE)
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		sess := game.NewSession(game.GenID(), RESP_BUFFER_SIZE)
		clientIP := ctx.RemoteAddr()

		zap.L().Info(
			"客户端已连接",
			zap.String("client_ip", clientIP),
			zap.String("session_id", sess.ID),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		writerExitCh := make(chan struct{})

		go writeLoop(conn, sess, clientIP, writeDoneCh, writerExitCh)

		readLoop(conn, sess, clientIP, appState)

		// 读循环退出，表示客户端断开连接，离开所在的所有房间
		appState.Coordinator.Disconnect(sess)

		close(writeDoneCh)
		<-writerExitCh

		zap.L().Info(
			"WebSocket连接处理完成",
			zap.String("client_ip", clientIP),
			zap.String("session_id", sess.ID),
		)
	}
}

func readLoop(conn *websocket.Conn, sess *game.Session, clientIP string, appState *state.AppState) {
	limiter := rate.NewLimiter(rate.Limit(appState.Cfg.RateLimit), appState.Cfg.RateBurst)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				zap.L().Warn(
					"读取消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
			}

			return
		}

		if !limiter.Allow() {
			zap.L().Warn(
				"客户端消息过于频繁",
				zap.String("client_ip", clientIP),
				zap.String("session_id", sess.ID),
			)
			sess.Send(game.WrapErrResponse("消息过于频繁，请稍后再试"))
			continue
		}

		var wrapper game.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			zap.L().Debug(
				"解析消息失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)

			sess.Send(game.WrapErrResponse(game.ErrInvalidRequest.Error()))
			continue
		}

		appState.Coordinator.Dispatch(sess, wrapper)
	}
}

func writeLoop(
	conn *websocket.Conn,
	sess *game.Session,
	clientIP string,
	doneCh <-chan struct{},
	exitCh chan<- struct{},
) {
	defer close(exitCh)

	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-doneCh:
			// 尽量把剩余响应发出去
			for {
				select {
				case resp := <-sess.RespCh:
					conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
					if err := conn.WriteJSON(resp); err != nil {
						return
					}
				default:
					return
				}
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Warn(
					"发送心跳失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				// 关闭连接让读循环退出
				conn.Close()
				return
			}

		case resp := <-sess.RespCh:
			conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Warn(
					"发送消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				conn.Close()
				return
			}

			zap.L().Debug(
				"发送消息",
				zap.String("session_id", sess.ID),
				zap.String("resp_type", resp.RespType),
			)
		}
	}
}
