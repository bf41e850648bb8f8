package game

import "errors"

// 会以 error-msg 的形式返回给请求者的错误
var (
	ErrRoomNotFound     = errors.New("房间不存在")
	ErrRoomFull         = errors.New("房间已满（最多 12 人）")
	ErrGameInProgress   = errors.New("游戏已经开始")
	ErrNotEnoughPlayers = errors.New("至少需要 3 名玩家才能开始")
	ErrUnauthorized     = errors.New("只有房主可以执行该操作")
	ErrInvalidSettings  = errors.New("房间设置无效")
	ErrUnknownCandidate = errors.New("投票对象不在房间中")
	ErrInvalidRequest   = errors.New("无效的请求格式")
	ErrRoomBusy         = errors.New("房间繁忙，请稍后再试")
)

// 只记录日志、不通知玩家的错误
var (
	ErrDuplicateVote = errors.New("重复投票")
	ErrDuplicateHint = errors.New("重复提交提示")
	ErrStaleTimer    = errors.New("过期的计时器")
	ErrWrongStage    = errors.New("当前阶段不接受该请求")
	ErrNotMember     = errors.New("请求者不在房间中")
	ErrNotSpy        = errors.New("只有卧底可以猜词")
	ErrSessionClosed = errors.New("连接已断开")
)

var publicErrors = []error{
	ErrRoomNotFound,
	ErrRoomFull,
	ErrGameInProgress,
	ErrNotEnoughPlayers,
	ErrUnauthorized,
	ErrInvalidSettings,
	ErrUnknownCandidate,
	ErrInvalidRequest,
	ErrRoomBusy,
}

// IsPublic 判断错误是否应该告知请求者
func IsPublic(err error) bool {
	for _, pub := range publicErrors {
		if errors.Is(err, pub) {
			return true
		}
	}

	return false
}
