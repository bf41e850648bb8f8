package game

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// 请求类型
const (
	REQ_CREATE_ROOM     = "create-room"
	REQ_JOIN_ROOM       = "join-room"
	REQ_TOGGLE_READY    = "toggle-ready"
	REQ_UPDATE_SETTINGS = "update-settings"
	REQ_START_GAME      = "start-game"
	REQ_SUBMIT_HINT     = "submit-hint"
	REQ_SUBMIT_VOTE     = "submit-vote"
	REQ_SPY_GUESS       = "spy-guess"
	REQ_NEXT_ROUND      = "next-round"
	REQ_LEAVE_ROOM      = "leave-room"
	REQ_CHAT_MESSAGE    = "chat-message"
	REQ_RESET_SCORES    = "reset-scores"

	// 以下类型只在服务端内部产生
	REQ_TIMEOUT  = "timeout"
	REQ_SNAPSHOT = "snapshot"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`

	// 由传输层填入，客户端无法伪造
	Session *Session `json:"-"`
	// 仅 REQ_SNAPSHOT 使用
	replyCh chan RoomSnapshot
}

// tryUnwrap 在类型匹配时解析请求数据，否则返回 nil
func tryUnwrap[T any](wrapper RequestWrapper, reqType string) *T {
	if wrapper.ReqType != reqType {
		return nil
	}

	var req T

	if len(wrapper.Data) == 0 {
		return &req
	}

	if err := json.Unmarshal(wrapper.Data, &req); err != nil {
		zap.L().Error(
			"Failed to unwrap request",
			zap.String("request_type", reqType),
			zap.Error(err),
		)
		return nil
	}

	return &req
}

func TryUnwrapCreateRoomRequest(wrapper RequestWrapper) *CreateRoomRequest {
	return tryUnwrap[CreateRoomRequest](wrapper, REQ_CREATE_ROOM)
}

func TryUnwrapJoinRoomRequest(wrapper RequestWrapper) *JoinRoomRequest {
	return tryUnwrap[JoinRoomRequest](wrapper, REQ_JOIN_ROOM)
}

func TryUnwrapToggleReadyRequest(wrapper RequestWrapper) *RoomRequest {
	return tryUnwrap[RoomRequest](wrapper, REQ_TOGGLE_READY)
}

func TryUnwrapUpdateSettingsRequest(wrapper RequestWrapper) *UpdateSettingsRequest {
	return tryUnwrap[UpdateSettingsRequest](wrapper, REQ_UPDATE_SETTINGS)
}

func TryUnwrapStartGameRequest(wrapper RequestWrapper) *RoomRequest {
	return tryUnwrap[RoomRequest](wrapper, REQ_START_GAME)
}

func TryUnwrapSubmitHintRequest(wrapper RequestWrapper) *SubmitHintRequest {
	return tryUnwrap[SubmitHintRequest](wrapper, REQ_SUBMIT_HINT)
}

func TryUnwrapSubmitVoteRequest(wrapper RequestWrapper) *SubmitVoteRequest {
	return tryUnwrap[SubmitVoteRequest](wrapper, REQ_SUBMIT_VOTE)
}

func TryUnwrapSpyGuessRequest(wrapper RequestWrapper) *SpyGuessRequest {
	return tryUnwrap[SpyGuessRequest](wrapper, REQ_SPY_GUESS)
}

func TryUnwrapNextRoundRequest(wrapper RequestWrapper) *RoomRequest {
	return tryUnwrap[RoomRequest](wrapper, REQ_NEXT_ROUND)
}

func TryUnwrapLeaveRoomRequest(wrapper RequestWrapper) *RoomRequest {
	return tryUnwrap[RoomRequest](wrapper, REQ_LEAVE_ROOM)
}

func TryUnwrapChatMessageRequest(wrapper RequestWrapper) *ChatMessageRequest {
	return tryUnwrap[ChatMessageRequest](wrapper, REQ_CHAT_MESSAGE)
}

func TryUnwrapResetScoresRequest(wrapper RequestWrapper) *RoomRequest {
	return tryUnwrap[RoomRequest](wrapper, REQ_RESET_SCORES)
}

func TryUnwrapTimeoutRequest(wrapper RequestWrapper) *TimeoutRequest {
	return tryUnwrap[TimeoutRequest](wrapper, REQ_TIMEOUT)
}

// 客户端可以发送的请求及其数据格式
var clientRequests = map[string]func() any{
	REQ_CREATE_ROOM:     func() any { return &CreateRoomRequest{} },
	REQ_JOIN_ROOM:       func() any { return &JoinRoomRequest{} },
	REQ_TOGGLE_READY:    func() any { return &RoomRequest{} },
	REQ_UPDATE_SETTINGS: func() any { return &UpdateSettingsRequest{} },
	REQ_START_GAME:      func() any { return &RoomRequest{} },
	REQ_SUBMIT_HINT:     func() any { return &SubmitHintRequest{} },
	REQ_SUBMIT_VOTE:     func() any { return &SubmitVoteRequest{} },
	REQ_SPY_GUESS:       func() any { return &SpyGuessRequest{} },
	REQ_NEXT_ROUND:      func() any { return &RoomRequest{} },
	REQ_LEAVE_ROOM:      func() any { return &RoomRequest{} },
	REQ_CHAT_MESSAGE:    func() any { return &ChatMessageRequest{} },
	REQ_RESET_SCORES:    func() any { return &RoomRequest{} },
}

// ValidateRequest 拒绝未知类型、内部类型和无法解析的请求
func ValidateRequest(wrapper RequestWrapper) error {
	newReq, ok := clientRequests[wrapper.ReqType]
	if !ok {
		return fmt.Errorf("%w: 未知的请求类型 %q", ErrInvalidRequest, wrapper.ReqType)
	}

	if len(wrapper.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(wrapper.Data, newReq()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return nil
}

// NewLeaveRequest 构造连接断开时代替客户端发出的离开请求
func NewLeaveRequest(sess *Session, code string) RequestWrapper {
	return RequestWrapper{
		ReqType: REQ_LEAVE_ROOM,
		Data:    mustMarshal(RoomRequest{Code: code}),
		Session: sess,
	}
}

// RoomCodeOf 读取任意房间内请求携带的房间号
func RoomCodeOf(wrapper RequestWrapper) (string, bool) {
	var req RoomRequest

	if err := json.Unmarshal(wrapper.Data, &req); err != nil || req.Code == "" {
		return "", false
	}

	return req.Code, true
}

// 响应类型
const (
	RESP_ERROR = "error-msg"

	RESP_ROOM_CREATED   = "room-created"
	RESP_ROOM_JOINED    = "room-joined"
	RESP_ROOM_UPDATED   = "room-updated"
	RESP_PLAYER_JOINED  = "player-joined"
	RESP_PLAYER_LEFT    = "player-left"
	RESP_ROUND_START    = "round-start"
	RESP_PHASE_CHANGE   = "phase-change"
	RESP_HINT_SUBMITTED = "hint-submitted"
	RESP_VOTE_CAST      = "vote-cast"
	RESP_SPY_CHANCE     = "spy-chance"
	RESP_ROUND_RESULTS  = "round-results"
	RESP_GAME_OVER      = "game-over"
	RESP_CHAT_MESSAGE   = "chat-message"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		Data:     ErrorMessage{Message: errMsg},
		ErrMsg:   errMsg,
	}
}
