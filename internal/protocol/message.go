package protocol

import "encoding/json"

// SchemaVersion 当前状态结构版本
// 客户端版本不一致时服务端会拒绝 room:join / match:endTurn
const SchemaVersion = 1

// Message 基础消息结构
// Seq 仅命令消息和对应的 ack 使用，推送事件为 0
type Message struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode 编码消息为 JSON 字节
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode 从 JSON 字节解码消息
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 命令（每条命令都会收到一条同 Seq 的 ack）
const (
	MsgRoomCreate   MessageType = "room:create"   // 创建房间
	MsgRoomJoin     MessageType = "room:join"     // 加入房间
	MsgRoomReady    MessageType = "room:ready"    // 切换准备状态
	MsgMatchEndTurn MessageType = "match:endTurn" // 结束回合
	MsgReconnect    MessageType = "reconnect"     // 断线重连
	MsgPing         MessageType = "ping"          // 心跳 ping
)

// 服务端 → 客户端
const (
	// 命令应答
	MsgAck MessageType = "ack"

	// 推送事件（均携带完整房间快照，客户端整体替换本地视图）
	MsgRoomState  MessageType = "room:state"  // 房间状态变更
	MsgMatchStart MessageType = "match:start" // 对局开始
	MsgMatchSync  MessageType = "match:sync"  // 重连后全量同步

	// 连接生命周期
	MsgConnected   MessageType = "connected"   // 连接成功（下发重连令牌）
	MsgReconnected MessageType = "reconnected" // 重连成功
	MsgPong        MessageType = "pong"        // 心跳 pong
)
