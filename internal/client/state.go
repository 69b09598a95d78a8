package client

import "github.com/palemoky/re-cards/internal/protocol"

// 客户端不做增量合并：每个快照都整体替换本地视图。
// 唯一的例外是 ready 标记——点击和 ack 之间展示本地意图值，
// 下一个权威快照或失败的 ack 无条件覆盖它。

// applySnapshot 用权威快照替换本地视图
func (c *Client) applySnapshot(snap *protocol.RoomSnapshot) {
	c.stateMu.Lock()
	c.state = snap
	c.optimisticReady = nil // 权威快照到达，乐观值作废
	c.stateMu.Unlock()

	if c.OnState != nil {
		c.OnState(snap)
	}
}

// State 当前房间快照，未入房间时为 nil
func (c *Client) State() *protocol.RoomSnapshot {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Ready 当前展示用的准备状态
// 有未确认的乐观值时返回乐观值，否则返回快照中自己的标记
func (c *Client) Ready() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	if c.optimisticReady != nil {
		return *c.optimisticReady
	}
	return c.snapshotReady()
}

// snapshotReady 从快照里取自己的准备标记（调用方需持有 stateMu）
func (c *Client) snapshotReady() bool {
	if c.state == nil {
		return false
	}
	for _, p := range c.state.Players {
		if p.Name == c.PlayerName && p.Connected {
			return p.Ready
		}
	}
	return false
}

// setOptimisticReady 记录本地意图值
func (c *Client) setOptimisticReady(ready bool) {
	c.stateMu.Lock()
	c.optimisticReady = &ready
	c.stateMu.Unlock()
}

// clearOptimisticReady 丢弃本地意图值（命令失败时回退）
func (c *Client) clearOptimisticReady() {
	c.stateMu.Lock()
	c.optimisticReady = nil
	c.stateMu.Unlock()
}

// resetState 离开房间或重置 UI 时清空本地视图
func (c *Client) resetState() {
	c.stateMu.Lock()
	c.state = nil
	c.optimisticReady = nil
	c.stateMu.Unlock()
}
