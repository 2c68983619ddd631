package protocol

// 错误码
const (
	ErrCodeUnknown          = 1000
	ErrCodeInvalidMsg       = 1001
	ErrCodeRateLimit        = 1002 // 速率限制
	ErrCodeRoomNotFound     = 2001
	ErrCodeRoomFull         = 2002
	ErrCodeNotInRoom        = 2003
	ErrCodeRoomLocked       = 2004 // 游戏已开始，房间锁定
	ErrCodeNameTaken        = 2005
	ErrCodeInvalidName      = 2006
	ErrCodePlayerNotFound   = 2007
	ErrCodeAlreadyInRoom    = 2008 // 该连接已占用房间中的另一个座位
	ErrCodeNotEnoughPlayers = 3001
	ErrCodeWrongPhase       = 3002
	ErrCodeInvalidWord      = 3003
	ErrCodeNotHost          = 3004
	ErrCodeNotDrawer        = 3005
	ErrCodePlayersNotReady  = 3006
	ErrCodeServerShutdown   = 5003
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:          "未知错误",
	ErrCodeInvalidMsg:       "无效的消息格式",
	ErrCodeRateLimit:        "发言过于频繁",
	ErrCodeRoomNotFound:     "房间不存在",
	ErrCodeRoomFull:         "房间已满",
	ErrCodeNotInRoom:        "您不在房间中",
	ErrCodeRoomLocked:       "游戏已开始，无法加入",
	ErrCodeNameTaken:        "昵称已被占用",
	ErrCodeInvalidName:      "昵称无效",
	ErrCodePlayerNotFound:   "房间中没有该玩家",
	ErrCodeAlreadyInRoom:    "您已在该房间中",
	ErrCodeNotEnoughPlayers: "至少需要 2 名玩家",
	ErrCodeWrongPhase:       "当前阶段不允许该操作",
	ErrCodeInvalidWord:      "无效的词语选择",
	ErrCodeNotHost:          "只有房主可以执行该操作",
	ErrCodeNotDrawer:        "只有画手可以选词",
	ErrCodePlayersNotReady:  "还有玩家未准备",
	ErrCodeServerShutdown:   "服务器正在关闭",
}
