package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/re-cards/internal/protocol"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 快照过期时间，房间正常销毁时会主动删除，TTL 只是兜底
	snapshotExpiration = 2 * time.Hour
)

// SnapshotStore 在线房间快照的 Redis 存储
// 只保存存活房间的最新快照，房间销毁即删除，不做历史持久化
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore 创建快照存储
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// SaveSnapshot 保存房间快照
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *protocol.RoomSnapshot) error {
	if snap == nil {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("序列化房间快照失败: %w", err)
	}

	key := roomKeyPrefix + snap.Code
	return s.client.Set(ctx, key, data, snapshotExpiration).Err()
}

// LoadSnapshot 读取房间快照，房间不存在时返回 nil
func (s *SnapshotStore) LoadSnapshot(ctx context.Context, code string) (*protocol.RoomSnapshot, error) {
	key := roomKeyPrefix + code
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap protocol.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("反序列化房间快照失败: %w", err)
	}
	return &snap, nil
}

// DeleteSnapshot 删除房间快照
func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, code string) error {
	key := roomKeyPrefix + code
	return s.client.Del(ctx, key).Err()
}

// ListCodes 列出所有存活房间号
func (s *SnapshotStore) ListCodes(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(keys))
	for i, key := range keys {
		codes[i] = key[len(roomKeyPrefix):]
	}
	return codes, nil
}
