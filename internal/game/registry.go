package game

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/re-cards/internal/config"
	"github.com/palemoky/re-cards/internal/protocol"
)

const (
	// 房间号长度
	roomCodeLength = 5
	// 房间号字符集，大写字母和数字，去掉易混淆的 0/O/1/I
	roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Archiver 在线房间快照存储
// 快照随房间销毁一并删除，不做房间生命周期之外的持久化
type Archiver interface {
	SaveSnapshot(ctx context.Context, snap *protocol.RoomSnapshot) error
	DeleteSnapshot(ctx context.Context, code string) error
}

// Registry 房间注册表，唯一持有 code → room 的映射
// 创建和销毁串行化，避免房间号重复
type Registry struct {
	cfg      *config.GameConfig
	archiver Archiver // 可为 nil
	rooms    map[string]*Room
	mu       sync.RWMutex
}

// NewRegistry 创建房间注册表
func NewRegistry(cfg *config.GameConfig, archiver Archiver) *Registry {
	r := &Registry{
		cfg:      cfg,
		archiver: archiver,
		rooms:    make(map[string]*Room),
	}

	// 启动闲置房间清理协程
	go r.cleanupLoop()

	return r
}

// CreateRoom 创建房间，发起者成为首位玩家
func (reg *Registry) CreateRoom(name string, conn Conn) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.generateCode()

	room := &Room{
		Code:        code,
		Status:      StatusLobby,
		CreatedAt:   time.Now(),
		registry:    reg,
		graceTimers: make(map[string]*time.Timer),
	}
	room.Players = append(room.Players, &Player{
		ID:   conn.GetID(),
		Name: name,
		Conn: conn,
	})

	reg.rooms[code] = room

	if reg.archiver != nil {
		snap := room.Snapshot()
		go func() { _ = reg.archiver.SaveSnapshot(context.Background(), snap) }()
	}

	log.Printf("🏠 房间 %s 已创建，玩家 %s", code, name)
	return room, nil
}

// JoinRoom 加入房间，成功后向房间内所有成员广播更新快照
func (reg *Registry) JoinRoom(code, name string, conn Conn) (*Room, error) {
	room := reg.Get(code)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, err := room.join(conn.GetID(), name, conn)
	if err != nil {
		return nil, err
	}

	room.broadcast(protocol.MustNewMessage(protocol.MsgRoomState, room.snapshot()))
	room.persist()

	log.Printf("👤 玩家 %s 加入房间 %s（%d/%d）", player.Name, room.Code,
		len(room.Players), reg.cfg.MaxPlayers)
	return room, nil
}

// Get 获取房间，房间号会先做大小写归一
func (reg *Registry) Get(code string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[NormalizeCode(code)]
}

// Remove 销毁房间，幂等
func (reg *Registry) Remove(code string) {
	code = NormalizeCode(code)

	reg.mu.Lock()
	_, exists := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()

	if !exists {
		return
	}

	if reg.archiver != nil {
		go func() { _ = reg.archiver.DeleteSnapshot(context.Background(), code) }()
	}

	log.Printf("🏠 房间 %s 已销毁", code)
}

// Count 当前房间数量
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// ActiveMatchCount 进行中的对局数量
func (reg *Registry) ActiveMatchCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	count := 0
	for _, room := range reg.rooms {
		room.mu.Lock()
		if room.Status == StatusPlaying {
			count++
		}
		room.mu.Unlock()
	}
	return count
}

// NormalizeCode 房间号输入归一：去空白并转大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateCode 生成未被占用的房间号（调用方需持有 reg.mu）
// 字符集 32^5 ≈ 3300 万，按预期房间量碰撞概率可忽略，冲突时重新生成
func (reg *Registry) generateCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := reg.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理闲置房间
func (reg *Registry) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		reg.cleanup()
	}
}

// cleanup 清理在大厅阶段闲置超时的房间
func (reg *Registry) cleanup() {
	timeout := reg.cfg.RoomIdleTimeoutDuration()
	now := time.Now()

	reg.mu.Lock()
	var expired []*Room
	for code, room := range reg.rooms {
		room.mu.Lock()
		if room.Status == StatusLobby && now.Sub(room.CreatedAt) > timeout {
			room.removed = true
			expired = append(expired, room)
			delete(reg.rooms, code)
		}
		room.mu.Unlock()
	}
	reg.mu.Unlock()

	for _, room := range expired {
		if reg.archiver != nil {
			code := room.Code
			go func() { _ = reg.archiver.DeleteSnapshot(context.Background(), code) }()
		}
		log.Printf("🏠 房间 %s 闲置超时已清理", room.Code)
	}
}
