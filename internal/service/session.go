package service

import (
	"undercover-be/internal/service/game"

	"go.uber.org/zap"
)

// SessionCoordinator 把连接上收到的请求路由到对应房间
type SessionCoordinator struct {
	rooms *RoomRegistry
}

func NewSessionCoordinator(rooms *RoomRegistry) *SessionCoordinator {
	return &SessionCoordinator{rooms: rooms}
}

// Dispatch 处理一条客户端请求，失败时只通知请求者
func (sc *SessionCoordinator) Dispatch(sess *game.Session, req game.RequestWrapper) {
	req.Session = sess

	if err := sc.dispatch(sess, req); err != nil {
		zap.L().Debug(
			"分发请求失败",
			zap.String("session_id", sess.ID),
			zap.String("request_type", req.ReqType),
			zap.Error(err),
		)

		sess.Send(game.WrapErrResponse(err.Error()))
	}
}

func (sc *SessionCoordinator) dispatch(sess *game.Session, req game.RequestWrapper) error {
	if err := game.ValidateRequest(req); err != nil {
		return err
	}

	if creq := game.TryUnwrapCreateRoomRequest(req); creq != nil {
		code, err := sc.rooms.CreateRoom(sess, creq.Name)
		if err != nil {
			return err
		}

		zap.L().Info(
			"会话创建房间",
			zap.String("session_id", sess.ID),
			zap.String("room_code", code),
		)
		return nil
	}

	code, ok := game.RoomCodeOf(req)
	if !ok {
		return game.ErrInvalidRequest
	}

	if req.ReqType == game.REQ_LEAVE_ROOM {
		return sc.rooms.Leave(code, req)
	}

	return sc.rooms.Submit(code, req)
}

// Disconnect 连接断开时视为离开其所在的每一个房间
func (sc *SessionCoordinator) Disconnect(sess *game.Session) {
	for _, code := range sess.Close() {
		if err := sc.rooms.Leave(code, game.NewLeaveRequest(sess, code)); err != nil {
			zap.L().Warn(
				"断开连接时离开房间失败",
				zap.String("session_id", sess.ID),
				zap.String("room_code", code),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("会话已断开", zap.String("session_id", sess.ID))
}
