package hint

import (
	"math/rand/v2"
	"slices"
	"strings"
	"unicode"
)

// Placeholder 未揭示字符的占位符
const Placeholder = '_'

// MaxReveals 每轮最多揭示的字符数
const MaxReveals = 2

// Hint 一次揭示结果，Position 为 rune 下标
type Hint struct {
	Position int
	Char     string
}

// Candidates 返回可揭示的下标：非空白且尚未揭示
func Candidates(word string, revealed []int) []int {
	var out []int
	for i, r := range []rune(word) {
		if unicode.IsSpace(r) || slices.Contains(revealed, i) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Reveal 从候选下标中均匀随机揭示一个，无候选时返回 false
func Reveal(word string, revealed []int, rng *rand.Rand) (Hint, bool) {
	candidates := Candidates(word, revealed)
	if len(candidates) == 0 {
		return Hint{}, false
	}
	var pos int
	if rng != nil {
		pos = candidates[rng.IntN(len(candidates))]
	} else {
		pos = candidates[rand.IntN(len(candidates))]
	}
	return Hint{Position: pos, Char: string([]rune(word)[pos])}, true
}

// Mask 生成遮罩：空白与已揭示字符原样显示，其余为占位符
func Mask(word string, revealed []int) string {
	var sb strings.Builder
	for i, r := range []rune(word) {
		if unicode.IsSpace(r) || slices.Contains(revealed, i) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(Placeholder)
		}
	}
	return sb.String()
}
