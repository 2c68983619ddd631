package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom    MessageType = "create_room"    // 创建房间
	MsgJoinRoom      MessageType = "join_room"      // 加入房间
	MsgReconnectRoom MessageType = "reconnect_room" // 断线重连
	MsgLeaveRoom     MessageType = "leave_room"     // 离开房间
	MsgGetRoomList   MessageType = "get_room_list"  // 获取房间列表

	// 游戏操作
	MsgStartGame    MessageType = "start_game"     // 房主开始游戏
	MsgWordChosen   MessageType = "word_chosen"    // 画手选词
	MsgSendMessage  MessageType = "send_message"   // 聊天 / 猜词
	MsgDraw         MessageType = "draw"           // 笔画（双向透传）
	MsgClearCanvas  MessageType = "clear_canvas"   // 清空画布
	MsgStartNewGame MessageType = "start_new_game" // 房主开启新一局
	MsgJoinNewGame  MessageType = "join_new_game"  // 玩家确认参加新一局
)

// 服务端 → 客户端 消息类型
const (
	MsgPong MessageType = "pong" // 心跳 pong

	// 房间相关
	MsgRoomCreated    MessageType = "room_created"     // 房间创建成功
	MsgRoomJoined     MessageType = "room_joined"      // 加入房间成功
	MsgRoomState      MessageType = "room_state"       // 房间快照（成员、房主、锁定状态）
	MsgRoomResync     MessageType = "room_resync"      // 重连后的状态同步
	MsgRoomListResult MessageType = "room_list_result" // 房间列表结果

	// 游戏流程
	MsgChooseWordPhase MessageType = "choose_word_phase" // 进入选词阶段
	MsgWordOptions     MessageType = "word_options"      // 候选词（仅画手）
	MsgDrawingPhase    MessageType = "drawing_phase"     // 进入绘画阶段
	MsgSecretWord      MessageType = "secret_word"       // 谜底（仅画手）
	MsgWordHint        MessageType = "word_hint"         // 提示（仅猜词者）
	MsgGuessResult     MessageType = "guess_result"      // 猜中确认（仅本人）
	MsgRoundResults    MessageType = "round_results"     // 本轮结果
	MsgFinalResults    MessageType = "final_results"     // 最终排名
	MsgGameOver        MessageType = "game_over"         // 游戏结束
	MsgCanvasCleared   MessageType = "canvas_cleared"    // 画布已清空

	// 聊天与系统通知
	MsgChat   MessageType = "chat"   // 聊天消息
	MsgSystem MessageType = "system" // 系统消息

	// 错误
	MsgError MessageType = "error" // 错误消息
)
