package client

import (
	"time"

	"github.com/palemoky/re-cards/internal/protocol"
)

// --- 便捷方法 ---

// CreateRoom 创建房间
func (c *Client) CreateRoom(name string, ack AckFunc) error {
	c.PlayerName = name
	return c.Emit(protocol.MsgRoomCreate, protocol.CreateRoomPayload{Name: name}, func(res *protocol.AckPayload) {
		if res.Ok {
			c.applySnapshot(res.State)
		}
		if ack != nil {
			ack(res)
		}
	})
}

// JoinRoom 加入房间，房间号大小写不敏感
func (c *Client) JoinRoom(code, name string, ack AckFunc) error {
	c.PlayerName = name
	return c.Emit(protocol.MsgRoomJoin, protocol.JoinRoomPayload{
		Code:          code,
		Name:          name,
		SchemaVersion: protocol.SchemaVersion,
	}, func(res *protocol.AckPayload) {
		if res.Ok {
			c.applySnapshot(res.State)
		}
		if ack != nil {
			ack(res)
		}
	})
}

// SetReady 切换准备状态
// 本地立即展示意图值，应答失败时回退，权威快照到达后以快照为准
func (c *Client) SetReady(ready bool, ack AckFunc) error {
	snap := c.State()
	if snap == nil {
		return errNotInRoom
	}

	c.setOptimisticReady(ready)

	return c.Emit(protocol.MsgRoomReady, protocol.ReadyPayload{
		Code:  snap.Code,
		Ready: ready,
	}, func(res *protocol.AckPayload) {
		if !res.Ok {
			c.clearOptimisticReady()
		}
		if ack != nil {
			ack(res)
		}
	})
}

// EndTurn 结束回合
func (c *Client) EndTurn(ack AckFunc) error {
	snap := c.State()
	if snap == nil {
		return errNotInRoom
	}

	return c.Emit(protocol.MsgMatchEndTurn, protocol.EndTurnPayload{
		Code:          snap.Code,
		SchemaVersion: protocol.SchemaVersion,
	}, ack)
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// Reset 清空本地视图（对应 UI 的 Reset 操作）
func (c *Client) Reset() {
	c.resetState()
}
