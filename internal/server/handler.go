package server

import (
	"errors"
	"log"
	"time"

	"github.com/palemoky/re-cards/internal/game"
	"github.com/palemoky/re-cards/internal/protocol"
)

// Handler 命令处理器
// 每条命令处理完毕后回一条同 Seq 的 ack，失败只通过 ack 返回，不单独推错误
type Handler struct {
	server *Server
}

// NewHandler 创建处理器
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle 分发消息
func (h *Handler) Handle(client *Client, msg *protocol.Message) {
	switch msg.Type {
	// 连接操作
	case protocol.MsgPing:
		h.handlePing(client, msg)
	case protocol.MsgReconnect:
		h.handleReconnect(client, msg)

	// 房间操作
	case protocol.MsgRoomCreate:
		h.handleRoomCreate(client, msg)
	case protocol.MsgRoomJoin:
		h.handleRoomJoin(client, msg)
	case protocol.MsgRoomReady:
		h.handleRoomReady(client, msg)

	// 对局操作
	case protocol.MsgMatchEndTurn:
		h.handleEndTurn(client, msg)

	default:
		log.Printf("⚠️  未知消息类型: '%s' (玩家: %s)", msg.Type, client.GetID())
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidMessage))
	}
}

// ackError 把房间操作错误转为失败 ack
func (h *Handler) ackError(client *Client, seq uint64, err error) {
	var gameErr *game.Error
	if errors.As(err, &gameErr) {
		client.SendMessage(protocol.NewErrorAck(seq, gameErr.Reason))
		return
	}
	log.Printf("命令处理失败: %v", err)
	client.SendMessage(protocol.NewErrorAck(seq, protocol.ReasonInternal))
}

// leaveCurrentRoom 玩家转去其他房间前，释放当前座位
func (h *Handler) leaveCurrentRoom(client *Client) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	if room := h.server.registry.Get(code); room != nil {
		room.RemovePlayer(client.GetID())
	}
	client.SetRoom("")
	h.server.sessions.SetRoom(client.GetID(), "")
}

// handleRoomCreate 处理 room:create
func (h *Handler) handleRoomCreate(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidMessage))
		return
	}

	name := payload.Name
	if name == "" {
		name = "Player"
	}

	// 如果已在房间中，先离开
	h.leaveCurrentRoom(client)

	client.SetName(name)
	room, err := h.server.registry.CreateRoom(name, client)
	if err != nil {
		h.ackError(client, msg.Seq, err)
		return
	}

	client.SetRoom(room.Code)
	h.server.sessions.SetRoom(client.GetID(), room.Code)

	client.SendMessage(protocol.NewAck(msg.Seq, protocol.AckPayload{
		Ok:    true,
		Code:  room.Code,
		State: room.Snapshot(),
	}))
}

// handleRoomJoin 处理 room:join
func (h *Handler) handleRoomJoin(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidMessage))
		return
	}

	// 版本不兼容直接拒绝，不做降级
	if payload.SchemaVersion != protocol.SchemaVersion {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonVersionMismatch))
		return
	}

	name := payload.Name
	if name == "" {
		name = "Player"
	}

	// 如果已在房间中，先离开
	h.leaveCurrentRoom(client)

	client.SetName(name)
	room, err := h.server.registry.JoinRoom(payload.Code, name, client)
	if err != nil {
		h.ackError(client, msg.Seq, err)
		return
	}

	client.SetRoom(room.Code)
	h.server.sessions.SetRoom(client.GetID(), room.Code)

	client.SendMessage(protocol.NewAck(msg.Seq, protocol.AckPayload{
		Ok:    true,
		State: room.Snapshot(),
	}))
}

// handleRoomReady 处理 room:ready
func (h *Handler) handleRoomReady(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ReadyPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidMessage))
		return
	}

	room := h.server.registry.Get(payload.Code)
	if room == nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonRoomNotFound))
		return
	}

	if err := room.SetReady(client.GetID(), payload.Ready); err != nil {
		h.ackError(client, msg.Seq, err)
		return
	}

	client.SendMessage(protocol.NewAck(msg.Seq, protocol.AckPayload{Ok: true}))
}

// handleEndTurn 处理 match:endTurn
func (h *Handler) handleEndTurn(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.EndTurnPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidMessage))
		return
	}

	if payload.SchemaVersion != protocol.SchemaVersion {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonVersionMismatch))
		return
	}

	room := h.server.registry.Get(payload.Code)
	if room == nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonRoomNotFound))
		return
	}

	if err := room.EndTurn(client.GetID()); err != nil {
		h.ackError(client, msg.Seq, err)
		return
	}

	client.SendMessage(protocol.NewAck(msg.Seq, protocol.AckPayload{Ok: true}))
}

// handleReconnect 处理断线重连
func (h *Handler) handleReconnect(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidMessage))
		return
	}

	// 验证重连令牌
	if !h.server.sessions.CanReconnect(payload.Token, payload.PlayerID) {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidToken))
		return
	}

	sess := h.server.sessions.GetSession(payload.PlayerID)
	if sess == nil {
		client.SendMessage(protocol.NewErrorAck(msg.Seq, protocol.ReasonInvalidToken))
		return
	}

	// 丢弃连接建立时分配的临时会话，迁回原玩家身份
	tempID := client.GetID()
	h.server.sessions.DeleteSession(tempID)
	h.server.rebindClient(client, sess.PlayerID)
	client.SetName(sess.PlayerName)

	h.server.sessions.SetOnline(sess.PlayerID)

	reconnected := protocol.ReconnectedPayload{
		PlayerID:   sess.PlayerID,
		PlayerName: sess.PlayerName,
	}

	// 如果仍在房间中，绑回原座位并推送全量快照
	if roomCode := h.server.sessions.GetRoom(sess.PlayerID); roomCode != "" {
		if room := h.server.registry.Get(roomCode); room != nil {
			if err := room.Rebind(sess.PlayerID, client); err == nil {
				client.SetRoom(roomCode)
				reconnected.RoomCode = roomCode
			}
		}
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgReconnected, reconnected))

	log.Printf("🔄 玩家 %s (%s) 重连成功", sess.PlayerName, sess.PlayerID)
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}
