package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/re-cards/internal/protocol"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSnapshotStore(client)
}

func testSnapshot(code string) *protocol.RoomSnapshot {
	return &protocol.RoomSnapshot{
		Code:   code,
		Status: "playing",
		Players: []protocol.PlayerSnapshot{
			{Name: "Alice", Ready: true, Connected: true},
			{Name: "Bob", Ready: true, Connected: false},
		},
		Match: &protocol.MatchSnapshot{
			SchemaVersion: protocol.SchemaVersion,
			Turn:          3,
			Active:        1,
			Seed:          42,
		},
	}
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot("AB2C3")))

	loaded, err := store.LoadSnapshot(ctx, "AB2C3")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "AB2C3", loaded.Code)
	assert.Equal(t, "playing", loaded.Status)
	require.Len(t, loaded.Players, 2)
	assert.False(t, loaded.Players[1].Connected)
	require.NotNil(t, loaded.Match)
	assert.Equal(t, 3, loaded.Match.Turn)
	assert.Equal(t, int64(42), loaded.Match.Seed)
}

func TestSnapshotStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := testSnapshot("AB2C3")
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	snap.Match.Turn = 4
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	loaded, err := store.LoadSnapshot(ctx, "AB2C3")
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Match.Turn)
}

func TestSnapshotStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadSnapshot(context.Background(), "ZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSnapshotStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot("AB2C3")))
	require.NoError(t, store.DeleteSnapshot(ctx, "AB2C3"))

	loaded, err := store.LoadSnapshot(ctx, "AB2C3")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// 删除不存在的快照不报错
	require.NoError(t, store.DeleteSnapshot(ctx, "AB2C3"))
}

func TestSnapshotStore_ListCodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot("AB2C3")))
	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot("XY9Z8")))

	codes, err := store.ListCodes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AB2C3", "XY9Z8"}, codes)
}

func TestSnapshotStore_SaveNil(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.SaveSnapshot(context.Background(), nil))
}
