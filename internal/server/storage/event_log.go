package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

const (
	chatKeyPrefix = "chat:"

	// 每个房间保留的日志条数
	chatLogCap        = 500
	chatLogExpiration = 24 * time.Hour
)

var _ types.EventLog = (*EventLog)(nil)

// EventLog 房间聊天日志，按房间追加到 Redis 列表
type EventLog struct {
	client *redis.Client
}

// NewEventLog 创建聊天日志
func NewEventLog(client *redis.Client) *EventLog {
	return &EventLog{client: client}
}

// Append 追加一条消息，超出上限的旧消息被裁剪
func (el *EventLog) Append(ctx context.Context, roomCode string, entry protocol.ChatPayload) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化聊天消息失败: %w", err)
	}

	key := chatKeyPrefix + roomCode
	pipe := el.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -chatLogCap, -1)
	pipe.Expire(ctx, key, chatLogExpiration)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent 返回房间最近 n 条消息，按时间顺序
func (el *EventLog) Recent(ctx context.Context, roomCode string, n int) ([]protocol.ChatPayload, error) {
	if n <= 0 {
		return nil, nil
	}

	raw, err := el.client.LRange(ctx, chatKeyPrefix+roomCode, int64(-n), -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.ChatPayload, 0, len(raw))
	for _, item := range raw {
		var entry protocol.ChatPayload
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("反序列化聊天消息失败: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
