package protocol

// --- 命令 payload ---

// CreateRoomPayload room:create
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload room:join
type JoinRoomPayload struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	SchemaVersion int    `json:"schemaVersion"`
}

// ReadyPayload room:ready
type ReadyPayload struct {
	Code  string `json:"code"`
	Ready bool   `json:"ready"`
}

// EndTurnPayload match:endTurn
type EndTurnPayload struct {
	Code          string `json:"code"`
	SchemaVersion int    `json:"schemaVersion"`
}

// ReconnectPayload reconnect
type ReconnectPayload struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

// PingPayload ping
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// --- 应答与推送 payload ---

// AckPayload 命令应答
// Ok 为 false 时只有 Reason 有效；成功时按命令附带 Code/State
type AckPayload struct {
	Ok     bool          `json:"ok"`
	Reason string        `json:"reason,omitempty"`
	Code   string        `json:"code,omitempty"`
	State  *RoomSnapshot `json:"state,omitempty"`
}

// ConnectedPayload connected
type ConnectedPayload struct {
	PlayerID       string `json:"playerId"`
	PlayerName     string `json:"playerName"`
	ReconnectToken string `json:"reconnectToken"`
}

// ReconnectedPayload reconnected
type ReconnectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	RoomCode   string `json:"roomCode,omitempty"`
}

// PongPayload pong
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// --- 房间快照 ---

// PlayerSnapshot 快照中的玩家
type PlayerSnapshot struct {
	Name      string `json:"name"`
	Ready     bool   `json:"ready"`
	Connected bool   `json:"connected"`
}

// MatchSnapshot 快照中的对局，status 为 playing 时存在
// 服务端只下发 Seed，洗牌等随机初始布局由两端用相同种子独立推导
type MatchSnapshot struct {
	SchemaVersion int   `json:"schemaVersion"`
	Turn          int   `json:"turn"`
	Active        int   `json:"active"`
	Seed          int64 `json:"seed"`
}

// RoomSnapshot 完整房间快照
// 每次状态变更后广播，客户端以快照整体替换本地视图
type RoomSnapshot struct {
	Code    string           `json:"code"`
	Status  string           `json:"status"`
	Players []PlayerSnapshot `json:"players"`
	Match   *MatchSnapshot   `json:"match"`
}
