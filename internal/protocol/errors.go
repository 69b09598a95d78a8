package protocol

// 命令失败原因（ack 的 reason 字段，线上协议的一部分，不可改名）
const (
	ReasonRoomNotFound    = "RoomNotFound"    // 房间不存在
	ReasonRoomFull        = "RoomFull"        // 房间已满
	ReasonRoomNotJoinable = "RoomNotJoinable" // 对局已开始，无法加入
	ReasonPlayerNotInRoom = "PlayerNotInRoom" // 玩家不在该房间
	ReasonNotInLobby      = "NotInLobby"      // 房间不在大厅阶段
	ReasonNotInMatch      = "NotInMatch"      // 房间不在对局阶段
	ReasonNotYourTurn     = "NotYourTurn"     // 还没轮到您
	ReasonVersionMismatch = "VersionMismatch" // 状态结构版本不兼容
	ReasonInvalidToken    = "InvalidToken"    // 重连令牌无效或已过期
	ReasonInvalidMessage  = "InvalidMessage"  // 无效的消息格式
	ReasonInternal        = "Internal"        // 服务端内部错误
)

// ReasonMessages 失败原因对应的提示文案（仅用于日志和展示）
var ReasonMessages = map[string]string{
	ReasonRoomNotFound:    "房间不存在",
	ReasonRoomFull:        "房间已满",
	ReasonRoomNotJoinable: "对局已开始，无法加入",
	ReasonPlayerNotInRoom: "您不在该房间中",
	ReasonNotInLobby:      "房间不在大厅阶段",
	ReasonNotInMatch:      "对局尚未开始",
	ReasonNotYourTurn:     "还没轮到您",
	ReasonVersionMismatch: "客户端版本不兼容，请升级",
	ReasonInvalidToken:    "重连令牌无效或已过期",
	ReasonInvalidMessage:  "无效的消息格式",
	ReasonInternal:        "服务器内部错误",
}
