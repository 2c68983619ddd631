package scoring

import (
	"math"
	"strings"
	"time"
)

// 计分规则
const (
	MaxGuessPoints = 150 // 开画即猜中的得分
	MinGuessPoints = 10  // 猜中保底得分
	DrawerBonus    = 50  // 画手每轮奖励（仅一次）

	ReasonCorrectGuess      = "correct_guess"
	ReasonSuccessfulDrawing = "successful_drawing"
)

// Points 按已用时间计算猜中得分：max(10, 150 - floor(秒))
func Points(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	secs := int(math.Floor(elapsed.Seconds()))
	return max(MinGuessPoints, MaxGuessPoints-secs)
}

// Normalize 去除首尾空白并忽略大小写
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches 猜测是否与答案一致
func Matches(guess, word string) bool {
	return word != "" && Normalize(guess) == Normalize(word)
}

// Contains 文本是否包含答案（用于拦截泄题的聊天）
func Contains(text, word string) bool {
	w := Normalize(word)
	return w != "" && strings.Contains(Normalize(text), w)
}

// Verdict 一条消息的判定结果
type Verdict int

const (
	VerdictChat       Verdict = iota // 普通聊天
	VerdictCorrect                   // 猜中
	VerdictLeaky                     // 可能泄题，仅对画手和已猜中者可见
	VerdictNotInRound                // 非绘画阶段的聊天
)

// Guess 一条消息的判定输入
type Guess struct {
	Drawing        bool   // 当前是否为绘画阶段
	FromDrawer     bool   // 发送者是否为画手
	AlreadyCorrect bool   // 发送者本轮是否已猜中
	Text           string // 消息原文
	Word           string // 本轮答案
}

// Evaluate 判定消息：仅绘画阶段、非画手、尚未猜中且文本等于答案时计分
func Evaluate(g Guess) Verdict {
	if !g.Drawing {
		return VerdictNotInRound
	}
	if g.FromDrawer || g.AlreadyCorrect {
		return VerdictLeaky
	}
	if Matches(g.Text, g.Word) {
		return VerdictCorrect
	}
	if Contains(g.Text, g.Word) {
		return VerdictLeaky
	}
	return VerdictChat
}
