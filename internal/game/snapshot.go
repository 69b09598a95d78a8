package game

import (
	"context"

	"github.com/palemoky/re-cards/internal/protocol"
)

// snapshot 构建完整房间快照（调用方需持有 r.mu）
// 快照自包含，客户端收到后整体替换本地视图
func (r *Room) snapshot() *protocol.RoomSnapshot {
	players := make([]protocol.PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		players[i] = protocol.PlayerSnapshot{
			Name:      p.Name,
			Ready:     p.Ready,
			Connected: p.Connected(),
		}
	}

	snap := &protocol.RoomSnapshot{
		Code:    r.Code,
		Status:  r.Status.String(),
		Players: players,
	}
	if r.Match != nil {
		snap.Match = &protocol.MatchSnapshot{
			SchemaVersion: r.Match.SchemaVersion,
			Turn:          r.Match.Turn,
			Active:        r.Match.Active,
			Seed:          r.Match.Seed,
		}
	}
	return snap
}

// Snapshot 构建完整房间快照
func (r *Room) Snapshot() *protocol.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// persist 把当前快照落到存储（调用方需持有 r.mu）
// fire-and-forget，不阻塞状态变更
func (r *Room) persist() {
	if r.registry.archiver == nil {
		return
	}
	snap := r.snapshot()
	go func() { _ = r.registry.archiver.SaveSnapshot(context.Background(), snap) }()
}
