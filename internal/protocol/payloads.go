package protocol

import "encoding/json"

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	DisplayName string `json:"display_name"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode    string `json:"room_code"`
	DisplayName string `json:"display_name"`
}

// ReconnectRoomPayload 重连请求（以昵称找回原座位）
type ReconnectRoomPayload struct {
	RoomCode    string `json:"room_code"`
	DisplayName string `json:"display_name"`
}

// WordChosenPayload 画手选词
type WordChosenPayload struct {
	Word string `json:"word"`
}

// SendMessagePayload 聊天 / 猜词
type SendMessagePayload struct {
	Text string `json:"text"`
}

// DrawPayload 笔画数据，服务端不解析路径内容
type DrawPayload struct {
	SenderID string          `json:"sender_id,omitempty"`
	Path     json.RawMessage `json:"path"`
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"is_host"`
	Online bool   `json:"online"`
	Ready  bool   `json:"ready"`
}

// RoomStatePayload 房间快照，每次房间变更后广播
type RoomStatePayload struct {
	RoomCode string       `json:"room_code"`
	HostID   string       `json:"host_id"`
	Locked   bool         `json:"locked"`
	Phase    string       `json:"phase"`
	Players  []PlayerInfo `json:"players"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string     `json:"room_code"`
	Player   PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Player   PlayerInfo   `json:"player"`
	Players  []PlayerInfo `json:"players"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"room_code"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// RoomListResultPayload 房间列表
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// ChooseWordPhasePayload 选词阶段公告
type ChooseWordPhasePayload struct {
	DrawerID    string `json:"drawer_id"`
	DrawerName  string `json:"drawer_name"`
	Round       int    `json:"round"` // 从 1 开始
	TotalRounds int    `json:"total_rounds"`
	DeadlineMs  int64  `json:"deadline_ms"`
}

// WordOptionsPayload 候选词（仅发送给画手）
type WordOptionsPayload struct {
	Options    []string `json:"options"`
	DeadlineMs int64    `json:"deadline_ms"`
}

// DrawingPhasePayload 绘画阶段公告
type DrawingPhasePayload struct {
	DrawerID   string `json:"drawer_id"`
	DrawerName string `json:"drawer_name"`
	MaskedWord string `json:"masked_word"`
	DeadlineMs int64  `json:"deadline_ms"`
}

// SecretWordPayload 谜底（仅发送给画手）
type SecretWordPayload struct {
	Word string `json:"word"`
}

// WordHintPayload 提示（仅发送给非画手）
type WordHintPayload struct {
	Position   int    `json:"position"`
	Char       string `json:"char"`
	MaskedWord string `json:"masked_word"`
}

// GuessResultPayload 猜中确认（仅发送给猜中者）
type GuessResultPayload struct {
	Correct        bool   `json:"correct"`
	Points         int    `json:"points"`
	Word           string `json:"word"`
	AlreadyGuessed bool   `json:"already_guessed,omitempty"`
}

// ChatPayload 聊天消息
type ChatPayload struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

// SystemPayload 系统消息
type SystemPayload struct {
	Text string `json:"text"`
	Time int64  `json:"time"`
}

// ScoreEntry 本轮得分明细
type ScoreEntry struct {
	PlayerID string `json:"player_id"`
	Points   int    `json:"points"`
	Reason   string `json:"reason"`
}

// RoundResultsPayload 本轮结果
type RoundResultsPayload struct {
	Word        string       `json:"word"`
	Round       int          `json:"round"`
	RoundScores []ScoreEntry `json:"round_scores"`
	Players     []PlayerInfo `json:"players"`
	DeadlineMs  int64        `json:"deadline_ms"`
}

// RankingEntry 最终排名
type RankingEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// FinalResultsPayload 最终结果
type FinalResultsPayload struct {
	Ranking    []RankingEntry `json:"ranking"`
	DeadlineMs int64          `json:"deadline_ms"`
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	Ranking []RankingEntry `json:"ranking"`
	HostID  string         `json:"host_id"`
}

// ResyncPayload 重连后按阶段下发的完整状态
type ResyncPayload struct {
	Room            RoomStatePayload     `json:"room"`
	SelfID          string               `json:"self_id"`
	DrawerID        string               `json:"drawer_id,omitempty"`
	Round           int                  `json:"round"`
	TotalRounds     int                  `json:"total_rounds"`
	RemainingMs     int64                `json:"remaining_ms"`
	SecretWord      string               `json:"secret_word,omitempty"`
	WordOptions     []string             `json:"word_options,omitempty"`
	MaskedWord      string               `json:"masked_word,omitempty"`
	AlreadyGuessed  bool                 `json:"already_guessed,omitempty"`
	CanvasHistory   []json.RawMessage    `json:"canvas_history,omitempty"`
	ChatHistory     []ChatPayload        `json:"chat_history,omitempty"`
	RoundResults    *RoundResultsPayload `json:"round_results,omitempty"`
	Ranking         []RankingEntry       `json:"ranking,omitempty"`
	ReadyForNewGame bool                 `json:"ready_for_new_game,omitempty"`
}
