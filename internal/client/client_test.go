package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/re-cards/internal/protocol"
)

// takeCommand 取出客户端刚发出的一条命令，命令只入队不上网
func takeCommand(t *testing.T, c *Client) *protocol.Message {
	t.Helper()

	select {
	case data := <-c.send:
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(time.Second):
		t.Fatal("客户端没有发出命令")
		return nil
	}
}

func lobbySnapshot(ready bool) *protocol.RoomSnapshot {
	return &protocol.RoomSnapshot{
		Code:   "AB2C3",
		Status: "lobby",
		Players: []protocol.PlayerSnapshot{
			{Name: "Alice", Ready: ready, Connected: true},
			{Name: "Bob", Ready: false, Connected: true},
		},
	}
}

func TestEmit_AssignsSequentialSeqs(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")

	require.NoError(t, c.Emit(protocol.MsgPing, protocol.PingPayload{}, func(*protocol.AckPayload) {}))
	require.NoError(t, c.Emit(protocol.MsgPing, protocol.PingPayload{}, func(*protocol.AckPayload) {}))

	first := takeCommand(t, c)
	second := takeCommand(t, c)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestDispatchAck_InvokesCallbackOnce(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")

	calls := 0
	var got *protocol.AckPayload
	require.NoError(t, c.Emit(protocol.MsgRoomReady, protocol.ReadyPayload{Code: "AB2C3", Ready: true},
		func(res *protocol.AckPayload) {
			calls++
			got = res
		}))
	cmd := takeCommand(t, c)

	c.handleMessage(protocol.NewAck(cmd.Seq, protocol.AckPayload{Ok: true}))
	require.Equal(t, 1, calls)
	assert.True(t, got.Ok)

	// 同一 seq 的重复 ack 不再派发
	c.handleMessage(protocol.NewAck(cmd.Seq, protocol.AckPayload{Ok: false}))
	assert.Equal(t, 1, calls)
}

func TestDispatchAck_UnknownSeqIgnored(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	// 不应 panic
	c.handleMessage(protocol.NewAck(99, protocol.AckPayload{Ok: true}))
}

func TestHandleMessage_PushReplacesStateWholesale(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")

	var notified int
	c.OnState = func(*protocol.RoomSnapshot) { notified++ }

	c.handleMessage(protocol.MustNewMessage(protocol.MsgRoomState, lobbySnapshot(false)))
	require.NotNil(t, c.State())
	assert.Equal(t, "lobby", c.State().Status)

	playing := lobbySnapshot(true)
	playing.Status = "playing"
	playing.Match = &protocol.MatchSnapshot{SchemaVersion: protocol.SchemaVersion, Turn: 2, Active: 1, Seed: 7}
	c.handleMessage(protocol.MustNewMessage(protocol.MsgMatchSync, playing))

	// 整体替换，不做增量合并
	snap := c.State()
	assert.Equal(t, "playing", snap.Status)
	require.NotNil(t, snap.Match)
	assert.Equal(t, 2, snap.Match.Turn)
	assert.Equal(t, 2, notified)
}

func TestHandleMessage_ConnectedStoresIdentity(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	c.handleMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:       "p1",
		PlayerName:     "Player",
		ReconnectToken: "token-abc",
	}))

	assert.Equal(t, "p1", c.PlayerID)
	assert.Equal(t, "token-abc", c.ReconnectToken)
}

func TestSetReady_OptimisticThenRevertOnFailure(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	c.PlayerName = "Alice"
	c.applySnapshot(lobbySnapshot(false))
	require.False(t, c.Ready())

	require.NoError(t, c.SetReady(true, nil))

	// ack 到达前展示本地意图值
	assert.True(t, c.Ready())

	cmd := takeCommand(t, c)
	assert.Equal(t, protocol.MsgRoomReady, cmd.Type)
	payload, err := protocol.ParsePayload[protocol.ReadyPayload](cmd)
	require.NoError(t, err)
	assert.Equal(t, "AB2C3", payload.Code)
	assert.True(t, payload.Ready)

	// 命令失败，意图值回退
	c.handleMessage(protocol.NewAck(cmd.Seq, protocol.AckPayload{Ok: false, Reason: protocol.ReasonNotInLobby}))
	assert.False(t, c.Ready())
}

func TestSetReady_AuthoritativeSnapshotOverridesOptimism(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	c.PlayerName = "Alice"
	c.applySnapshot(lobbySnapshot(false))

	require.NoError(t, c.SetReady(true, nil))
	require.True(t, c.Ready())

	// 权威快照无条件覆盖乐观值
	c.applySnapshot(lobbySnapshot(false))
	assert.False(t, c.Ready())
}

func TestSetReady_RequiresRoom(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	assert.ErrorIs(t, c.SetReady(true, nil), errNotInRoom)
	assert.ErrorIs(t, c.EndTurn(nil), errNotInRoom)
}

func TestCreateRoom_AppliesAckState(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")

	var acked bool
	require.NoError(t, c.CreateRoom("Alice", func(res *protocol.AckPayload) { acked = res.Ok }))
	cmd := takeCommand(t, c)
	assert.Equal(t, protocol.MsgRoomCreate, cmd.Type)

	c.handleMessage(protocol.NewAck(cmd.Seq, protocol.AckPayload{
		Ok:    true,
		Code:  "AB2C3",
		State: lobbySnapshot(false),
	}))

	assert.True(t, acked)
	require.NotNil(t, c.State())
	assert.Equal(t, "AB2C3", c.State().Code)
}

func TestJoinRoom_FailedAckLeavesStateEmpty(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")

	var reason string
	require.NoError(t, c.JoinRoom("ZZZZZ", "Bob", func(res *protocol.AckPayload) { reason = res.Reason }))
	cmd := takeCommand(t, c)

	// 请求携带当前结构版本
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](cmd)
	require.NoError(t, err)
	assert.Equal(t, protocol.SchemaVersion, payload.SchemaVersion)

	c.handleMessage(protocol.NewErrorAck(cmd.Seq, protocol.ReasonRoomNotFound))
	assert.Equal(t, protocol.ReasonRoomNotFound, reason)
	assert.Nil(t, c.State())
}

func TestReset_ClearsLocalView(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	c.PlayerName = "Alice"
	c.applySnapshot(lobbySnapshot(true))
	require.NotNil(t, c.State())

	c.Reset()
	assert.Nil(t, c.State())
	assert.False(t, c.Ready())
}

func TestSendMessage_AfterClose(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://example/ws")
	c.Close()

	err := c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{}))
	assert.Error(t, err)
}
