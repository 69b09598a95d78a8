package game

import (
	"math/rand"

	"github.com/palemoky/re-cards/internal/protocol"
)

// Match 对局状态
// Seed 在开局时生成一次，此后不可变；快照只下发 Seed 本身，
// 洗牌等随机初始布局由两端调用 DeriveOrder 独立推导
type Match struct {
	SchemaVersion int
	Seed          int64
	Turn          int
	Active        int
}

// NewMatch 创建对局，回合从 0 开始，首位玩家先行动
func NewMatch() *Match {
	return &Match{
		SchemaVersion: protocol.SchemaVersion,
		Seed:          rand.Int63(),
	}
}

// DeriveOrder 用种子推导洗牌后的初始布局
// 两端对相同的 seed 和 n 必须得到逐字节一致的结果
func DeriveOrder(seed int64, n int) []int {
	rng := rand.New(rand.NewSource(seed))

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
