package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/re-cards/internal/protocol"
)

func TestNewMatch(t *testing.T) {
	t.Parallel()

	m := NewMatch()
	assert.Equal(t, protocol.SchemaVersion, m.SchemaVersion)
	assert.Equal(t, 0, m.Turn)
	assert.Equal(t, 0, m.Active)
}

func TestDeriveOrder_Deterministic(t *testing.T) {
	t.Parallel()

	// 同一种子在任何端上得到同一布局，这是只传种子的前提
	a := DeriveOrder(42, 54)
	b := DeriveOrder(42, 54)
	assert.Equal(t, a, b)

	c := DeriveOrder(43, 54)
	assert.NotEqual(t, a, c, "不同种子应得到不同布局")
}

func TestDeriveOrder_IsPermutation(t *testing.T) {
	t.Parallel()

	order := DeriveOrder(7, 32)
	require.Len(t, order, 32)

	seen := make(map[int]bool)
	for _, v := range order {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 32)
		assert.False(t, seen[v], "元素 %d 重复", v)
		seen[v] = true
	}
}
