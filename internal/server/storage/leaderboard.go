package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:score"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"
)

var _ types.Leaderboard = (*Leaderboard)(nil)

// PlayerStats 玩家统计数据，按昵称（不区分大小写）归档
type PlayerStats struct {
	PlayerName string `json:"player_name"`

	TotalGames int `json:"total_games"` // 总场次
	Wins       int `json:"wins"`        // 排名第一的场次
	TotalScore int `json:"total_score"` // 累计得分
	BestScore  int `json:"best_score"`  // 单局最高分

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// Leaderboard 跨房间累计积分排行榜
type Leaderboard struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboard 创建排行榜
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client, now: time.Now}
}

func statsMember(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lb.redis.Get(ctx, playerStatsKey+statsMember(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("反序列化玩家统计失败: %w", err)
	}
	return &stats, nil
}

func (lb *Leaderboard) savePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lb.redis.Set(ctx, playerStatsKey+statsMember(stats.PlayerName), data, 0).Err()
}

// RecordGameResult 记录一局的最终排名
func (lb *Leaderboard) RecordGameResult(ctx context.Context, ranking []protocol.RankingEntry) error {
	now := lb.now()
	for _, entry := range ranking {
		if err := lb.recordPlayer(ctx, entry, now); err != nil {
			return fmt.Errorf("记录 %s 的成绩失败: %w", entry.Name, err)
		}
	}
	return nil
}

func (lb *Leaderboard) recordPlayer(ctx context.Context, entry protocol.RankingEntry, now time.Time) error {
	stats, err := lb.GetPlayerStats(ctx, entry.Name)
	if err != nil {
		return err
	}
	if stats == nil {
		stats = &PlayerStats{CreatedAt: now.Unix()}
	}

	stats.PlayerName = entry.Name
	stats.TotalGames++
	if entry.Rank == 1 {
		stats.Wins++
	}
	stats.TotalScore += entry.Score
	stats.BestScore = max(stats.BestScore, entry.Score)
	stats.LastPlayedAt = now.Unix()

	if err := lb.savePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lb.incrementBoards(ctx, statsMember(entry.Name), entry.Score, now)
}

// incrementBoards 更新总榜、日榜和周榜
func (lb *Leaderboard) incrementBoards(ctx context.Context, member string, score int, now time.Time) error {
	dailyKey := dailyLeaderboard + now.Format("2006-01-02")
	year, week := now.ISOWeek()
	weeklyKey := fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)

	pipe := lb.redis.TxPipeline()
	pipe.ZIncrBy(ctx, leaderboardKey, float64(score), member)
	pipe.ZIncrBy(ctx, dailyKey, float64(score), member)
	pipe.Expire(ctx, dailyKey, 48*time.Hour)
	pipe.ZIncrBy(ctx, weeklyKey, float64(score), member)
	pipe.Expire(ctx, weeklyKey, 8*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetLeaderboard 获取总榜前 limit 名
func (lb *Leaderboard) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	results, err := lb.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		member, _ := result.Member.(string)
		stats, err := lb.GetPlayerStats(ctx, member)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}

		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: stats.PlayerName,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			WinRate:    winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lb *Leaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, leaderboardKey, statsMember(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
