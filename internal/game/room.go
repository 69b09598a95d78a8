package game

import (
	"log"
	"sync"
	"time"

	"github.com/palemoky/re-cards/internal/protocol"
)

// Status 房间状态
type Status int

const (
	StatusLobby   Status = iota // 大厅阶段，等待玩家准备
	StatusPlaying               // 对局进行中
)

// String 返回快照中使用的状态名
func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	default:
		return "lobby"
	}
}

// Conn 已绑定到玩家的连接投递端
// 由 server 包的 Client 实现，广播对连接失败不做等待
type Conn interface {
	GetID() string
	SendMessage(msg *protocol.Message)
}

// Player 房间中的玩家
// Conn 为弱引用，断线期间为 nil，座位在宽限期内保留
type Player struct {
	ID    string
	Name  string
	Ready bool
	Conn  Conn
}

// Connected 玩家当前是否有存活连接
func (p *Player) Connected() bool {
	return p.Conn != nil
}

// Room 游戏房间
// Players 按加入顺序排列，该顺序即开局后的行动顺序
// 所有状态变更都持有 mu，保证准备判定和回合推进的原子性
type Room struct {
	Code      string
	Status    Status
	Players   []*Player
	Match     *Match
	CreatedAt time.Time

	registry    *Registry
	graceTimers map[string]*time.Timer
	removed     bool
	mu          sync.Mutex
}

// --- 大厅阶段 ---

// join 追加一名玩家（调用方需持有 r.mu）
func (r *Room) join(id, name string, conn Conn) (*Player, error) {
	if r.removed {
		return nil, ErrRoomNotFound
	}
	if r.Status != StatusLobby {
		return nil, ErrRoomNotJoinable
	}
	if len(r.Players) >= r.registry.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := &Player{ID: id, Name: name, Conn: conn}
	r.Players = append(r.Players, player)
	return player, nil
}

// SetReady 设置玩家准备状态
// 每次变更都会广播快照；当人数达到下限且全员准备时原子地开局
func (r *Room) SetReady(playerID string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removed {
		return ErrRoomNotFound
	}
	if r.Status != StatusLobby {
		return ErrNotInLobby
	}

	player := r.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotInRoom
	}

	player.Ready = ready

	// 开局判定只在每次准备变更时求值一次
	if r.allReady() && len(r.Players) >= r.registry.cfg.MinPlayers {
		r.startMatch()
		return nil
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.snapshot()))
	r.persist()
	return nil
}

// allReady 是否全员准备（调用方需持有 r.mu）
func (r *Room) allReady() bool {
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// startMatch 构造对局并进入 playing（调用方需持有 r.mu）
func (r *Room) startMatch() {
	r.Match = NewMatch()
	r.Status = StatusPlaying

	r.broadcast(protocol.MustNewMessage(protocol.MsgMatchStart, r.snapshot()))
	r.persist()

	log.Printf("🎮 房间 %s 开局，%d 名玩家，种子 %d", r.Code, len(r.Players), r.Match.Seed)
}

// revertToLobby 对局中止，回到大厅阶段（调用方需持有 r.mu）
// 所有准备标记清零，Match 随之销毁
func (r *Room) revertToLobby() {
	r.Match = nil
	r.Status = StatusLobby
	for _, p := range r.Players {
		p.Ready = false
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.snapshot()))
	r.persist()

	log.Printf("🏠 房间 %s 对局中止，回到大厅", r.Code)
}

// --- 对局阶段 ---

// EndTurn 当前行动玩家结束回合
// 回合计数加一，行动位推进到下一个在线座位
func (r *Room) EndTurn(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removed {
		return ErrRoomNotFound
	}
	if r.Status != StatusPlaying || r.Match == nil {
		return ErrNotInMatch
	}

	active := r.Players[r.Match.Active]
	if active.ID != playerID {
		return ErrNotYourTurn
	}

	r.Match.Turn++
	r.Match.Active = r.nextConnected(r.Match.Active)

	r.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.snapshot()))
	r.persist()
	return nil
}

// nextConnected 从 idx 之后找到下一个在线座位（调用方需持有 r.mu）
// 找不到时保持原位
func (r *Room) nextConnected(idx int) int {
	n := len(r.Players)
	for step := 1; step <= n; step++ {
		next := (idx + step) % n
		if r.Players[next].Connected() {
			return next
		}
	}
	return idx
}

// --- 连接生命周期 ---

// MarkDisconnected 标记玩家掉线，座位保留一个宽限期
// 若掉线的正是行动玩家，行动位立即跳到下一个在线座位，不消耗回合数
func (r *Room) MarkDisconnected(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findPlayer(playerID)
	if player == nil || r.removed {
		return
	}

	player.Conn = nil

	if r.Status == StatusPlaying && r.Players[r.Match.Active].ID == playerID {
		r.Match.Active = r.nextConnected(r.Match.Active)
	}

	grace := r.registry.cfg.GracePeriodDuration()
	r.graceTimers[playerID] = time.AfterFunc(grace, func() {
		r.expireSeat(playerID)
	})

	r.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.snapshot()))
	r.persist()

	log.Printf("📴 玩家 %s 在房间 %s 掉线，座位保留 %v", player.Name, r.Code, grace)
}

// Rebind 将重连的新连接绑回原座位，并向该连接推送全量快照
func (r *Room) Rebind(playerID string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removed {
		return ErrRoomNotFound
	}
	player := r.findPlayer(playerID)
	if player == nil {
		return ErrPlayerNotInRoom
	}

	if timer, ok := r.graceTimers[playerID]; ok {
		timer.Stop()
		delete(r.graceTimers, playerID)
	}

	player.Conn = conn

	// 重连方不依赖错过的广播，直接整体重新同步
	conn.SendMessage(protocol.MustNewMessage(protocol.MsgMatchSync, r.snapshot()))
	r.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.snapshot()))
	r.persist()

	log.Printf("📶 玩家 %s 重连到房间 %s", player.Name, r.Code)
	return nil
}

// expireSeat 宽限期结束仍未重连，移除座位
func (r *Room) expireSeat(playerID string) {
	r.mu.Lock()

	delete(r.graceTimers, playerID)

	idx := r.findPlayerIndex(playerID)
	if idx == -1 || r.removed || r.Players[idx].Connected() {
		// 定时器停止和触发存在竞争，重连成功则座位保留
		r.mu.Unlock()
		return
	}

	log.Printf("⏰ 玩家 %s 宽限期已过，移出房间 %s", r.Players[idx].Name, r.Code)

	empty := r.removeSeat(idx)
	r.mu.Unlock()

	if empty {
		r.registry.Remove(r.Code)
	}
}

// RemovePlayer 主动移除玩家座位（如玩家转去创建或加入其他房间）
func (r *Room) RemovePlayer(playerID string) {
	r.mu.Lock()

	idx := r.findPlayerIndex(playerID)
	if idx == -1 || r.removed {
		r.mu.Unlock()
		return
	}

	if timer, ok := r.graceTimers[playerID]; ok {
		timer.Stop()
		delete(r.graceTimers, playerID)
	}

	log.Printf("👋 玩家 %s 离开房间 %s", r.Players[idx].Name, r.Code)

	empty := r.removeSeat(idx)
	r.mu.Unlock()

	if empty {
		r.registry.Remove(r.Code)
	}
}

// removeSeat 移除座位并处理善后（调用方需持有 r.mu）
// 返回房间是否已空，空房间由调用方在释放锁后销毁
func (r *Room) removeSeat(idx int) bool {
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	// 空房间立即销毁
	if len(r.Players) == 0 {
		r.removed = true
		return true
	}

	if r.Match != nil {
		if r.Match.Active > idx {
			r.Match.Active--
		} else if r.Match.Active >= len(r.Players) {
			r.Match.Active = 0
		}
	}

	// 人数跌破开局下限，对局中止
	if r.Status == StatusPlaying && len(r.Players) < r.registry.cfg.MinPlayers {
		r.revertToLobby()
		return false
	}

	if r.Match != nil && !r.Players[r.Match.Active].Connected() {
		r.Match.Active = r.nextConnected(r.Match.Active)
	}

	r.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.snapshot()))
	r.persist()
	return false
}

// --- 工具方法 ---

func (r *Room) findPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) findPlayerIndex(playerID string) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// broadcast 向房间内所有在线玩家投递消息（调用方需持有 r.mu）
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.SendMessage(msg)
		}
	}
}

// PlayerCount 当前座位数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// ConnectedCount 当前在线玩家数
func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, p := range r.Players {
		if p.Connected() {
			count++
		}
	}
	return count
}
