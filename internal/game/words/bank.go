package words

import (
	"math/rand/v2"
	"strings"
)

// DefaultOptionCount 每轮提供给画手的候选词数量
const DefaultOptionCount = 3

// Bank 房间级词库，抽完后从完整词表补充
type Bank struct {
	vocabulary []string
	pool       []string
	rng        *rand.Rand
}

// NewBank 创建词库，vocabulary 为空时使用内置词库
func NewBank(vocabulary []string, rng *rand.Rand) *Bank {
	vocab := make([]string, 0, len(vocabulary))
	seen := make(map[string]struct{}, len(vocabulary))
	for _, w := range vocabulary {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		vocab = append(vocab, w)
	}
	if len(vocab) == 0 {
		vocab = DefaultVocabulary()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Bank{vocabulary: vocab, rng: rng}
}

// Draw 从剩余词池中均匀随机取出一个词
func (b *Bank) Draw() string {
	if len(b.pool) == 0 {
		b.refill()
	}
	i := b.rng.IntN(len(b.pool))
	w := b.pool[i]
	last := len(b.pool) - 1
	b.pool[i] = b.pool[last]
	b.pool = b.pool[:last]
	return w
}

// DrawOptions 取出 n 个互不相同的词
func (b *Bank) DrawOptions(n int) []string {
	if n > len(b.vocabulary) {
		n = len(b.vocabulary)
	}
	options := make([]string, 0, n)
	picked := make(map[string]struct{}, n)
	for len(options) < n {
		w := b.Draw()
		if _, dup := picked[w]; dup {
			// 补充词池后可能抽到本批已选的词，放回后重抽
			b.pool = append(b.pool, w)
			continue
		}
		picked[w] = struct{}{}
		options = append(options, w)
	}
	return options
}

// Remaining 当前词池剩余数量
func (b *Bank) Remaining() int {
	return len(b.pool)
}

// Size 词表总量
func (b *Bank) Size() int {
	return len(b.vocabulary)
}

func (b *Bank) refill() {
	b.pool = append(b.pool[:0], b.vocabulary...)
}
