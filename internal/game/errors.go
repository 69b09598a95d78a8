package game

import "github.com/palemoky/re-cards/internal/protocol"

// Error 房间操作错误
// Reason 直接作为 ack 的 reason 字段返回
type Error struct {
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound    = &Error{Reason: protocol.ReasonRoomNotFound, Message: "房间不存在"}
	ErrRoomFull        = &Error{Reason: protocol.ReasonRoomFull, Message: "房间已满"}
	ErrRoomNotJoinable = &Error{Reason: protocol.ReasonRoomNotJoinable, Message: "对局已开始，无法加入"}
	ErrPlayerNotInRoom = &Error{Reason: protocol.ReasonPlayerNotInRoom, Message: "您不在该房间中"}
	ErrNotInLobby      = &Error{Reason: protocol.ReasonNotInLobby, Message: "房间不在大厅阶段"}
	ErrNotInMatch      = &Error{Reason: protocol.ReasonNotInMatch, Message: "对局尚未开始"}
	ErrNotYourTurn     = &Error{Reason: protocol.ReasonNotYourTurn, Message: "还没轮到您"}
)
