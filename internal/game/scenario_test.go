package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/re-cards/internal/config"
	"github.com/palemoky/re-cards/internal/protocol"
	"github.com/palemoky/re-cards/internal/testutil"
)

// 完整对局流程：建房、加入、全员准备、轮流行动
func TestScenario_FullMatchFlow(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)

	alice := testutil.NewMockConn("alice")
	bob := testutil.NewMockConn("bob")

	room, err := reg.CreateRoom("Alice", alice)
	require.NoError(t, err)

	_, err = reg.JoinRoom(room.Code, "Bob", bob)
	require.NoError(t, err)

	require.NoError(t, room.SetReady("alice", true))
	require.NoError(t, room.SetReady("bob", true))

	// 双方进入对局，回合 0，行动位在建房者
	require.Equal(t, StatusPlaying, room.Status)
	assert.Equal(t, 0, room.Match.Turn)
	assert.Equal(t, 0, room.Match.Active)

	require.NoError(t, room.EndTurn("alice"))
	assert.Equal(t, 1, room.Match.Turn)
	assert.Equal(t, 1, room.Match.Active)

	// 刚结束回合的一方立即再次行动会被拒绝，状态不变
	assert.ErrorIs(t, room.EndTurn("alice"), ErrNotYourTurn)
	assert.Equal(t, 1, room.Match.Turn)
	assert.Equal(t, 1, room.Match.Active)

	require.NoError(t, room.EndTurn("bob"))
	assert.Equal(t, 2, room.Match.Turn)
	assert.Equal(t, 0, room.Match.Active)

	// 两端基于同一种子推导同一布局
	snapA, err := protocol.ParsePayload[protocol.RoomSnapshot](alice.LastOfType(protocol.MsgMatchStart))
	require.NoError(t, err)
	snapB, err := protocol.ParsePayload[protocol.RoomSnapshot](bob.LastOfType(protocol.MsgMatchStart))
	require.NoError(t, err)
	assert.Equal(t,
		DeriveOrder(snapA.Match.Seed, 54),
		DeriveOrder(snapB.Match.Seed, 54))
}

// 掉线超过宽限期：座位被释放，人数不足时对局中止
func TestScenario_GraceExpiryRevertsMatch(t *testing.T) {
	t.Parallel()

	cfg := &config.GameConfig{MinPlayers: 2, MaxPlayers: 4, GracePeriod: 1, RoomIdleTimeout: 10}
	reg := NewRegistry(cfg, nil)

	alice := testutil.NewMockConn("alice")
	bob := testutil.NewMockConn("bob")

	room, err := reg.CreateRoom("Alice", alice)
	require.NoError(t, err)
	_, err = reg.JoinRoom(room.Code, "Bob", bob)
	require.NoError(t, err)

	require.NoError(t, room.SetReady("alice", true))
	require.NoError(t, room.SetReady("bob", true))
	require.Equal(t, StatusPlaying, room.Status)

	room.MarkDisconnected("bob")

	// 宽限期内座位仍在
	assert.Equal(t, 2, room.PlayerCount())

	require.Eventually(t, func() bool {
		return room.PlayerCount() == 1
	}, 3*time.Second, 50*time.Millisecond, "宽限期后座位应被释放")

	// 无残留对局状态
	assert.Equal(t, StatusLobby, room.Status)
	assert.Nil(t, room.Match)
	assert.False(t, room.Players[0].Ready)
}

// 掉线在宽限期内重连：座位和对局原样保留
func TestScenario_ReconnectWithinGrace(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)

	alice := testutil.NewMockConn("alice")
	bob := testutil.NewMockConn("bob")

	room, err := reg.CreateRoom("Alice", alice)
	require.NoError(t, err)
	_, err = reg.JoinRoom(room.Code, "Bob", bob)
	require.NoError(t, err)
	require.NoError(t, room.SetReady("alice", true))
	require.NoError(t, room.SetReady("bob", true))

	require.NoError(t, room.EndTurn("alice"))
	seed := room.Match.Seed

	// 行动玩家掉线，行动位立即让给下一个在线座位
	room.MarkDisconnected("bob")
	assert.Equal(t, 0, room.Match.Active)
	assert.Equal(t, 1, room.Match.Turn, "让位不消耗回合数")

	fresh := testutil.NewMockConn("bob")
	require.NoError(t, room.Rebind("bob", fresh))

	// 对局进度原样保留，让出的行动位不回退
	assert.Equal(t, StatusPlaying, room.Status)
	assert.Equal(t, 1, room.Match.Turn)
	assert.Equal(t, seed, room.Match.Seed)
	assert.Equal(t, 0, room.Match.Active)

	// 重连方回到正常轮转
	require.NoError(t, room.EndTurn("alice"))
	require.NoError(t, room.EndTurn("bob"))
	assert.Equal(t, 3, room.Match.Turn)
}
