package apperrors

import (
	"errors"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// Kind 错误分类
type Kind int

const (
	KindValidation    Kind = iota // 请求无效，状态未变更
	KindAuthorization             // 无权执行，状态未变更
	KindStale                     // 过期操作（阶段已推进），静默忽略
	KindInternal                  // 意外错误，上报日志，房间保持当前阶段
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStale:
		return "stale"
	default:
		return "internal"
	}
}

// GameError 游戏错误
type GameError struct {
	Code    int
	Kind    Kind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound     = &GameError{Code: protocol.ErrCodeRoomNotFound, Kind: KindValidation, Message: "房间不存在"}
	ErrRoomFull         = &GameError{Code: protocol.ErrCodeRoomFull, Kind: KindValidation, Message: "房间已满"}
	ErrRoomLocked       = &GameError{Code: protocol.ErrCodeRoomLocked, Kind: KindValidation, Message: "游戏已开始，无法加入"}
	ErrNameTaken        = &GameError{Code: protocol.ErrCodeNameTaken, Kind: KindValidation, Message: "昵称已被占用"}
	ErrInvalidName      = &GameError{Code: protocol.ErrCodeInvalidName, Kind: KindValidation, Message: "昵称无效"}
	ErrNotInRoom        = &GameError{Code: protocol.ErrCodeNotInRoom, Kind: KindValidation, Message: "您不在房间中"}
	ErrPlayerNotFound   = &GameError{Code: protocol.ErrCodePlayerNotFound, Kind: KindValidation, Message: "房间中没有该玩家"}
	ErrAlreadyInRoom    = &GameError{Code: protocol.ErrCodeAlreadyInRoom, Kind: KindValidation, Message: "您已在该房间中"}
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Kind: KindValidation, Message: "至少需要 2 名玩家"}
	ErrWrongPhase       = &GameError{Code: protocol.ErrCodeWrongPhase, Kind: KindValidation, Message: "当前阶段不允许该操作"}
	ErrInvalidWord      = &GameError{Code: protocol.ErrCodeInvalidWord, Kind: KindValidation, Message: "无效的词语选择"}
	ErrPlayersNotReady  = &GameError{Code: protocol.ErrCodePlayersNotReady, Kind: KindValidation, Message: "还有玩家未准备"}
	ErrNotHost          = &GameError{Code: protocol.ErrCodeNotHost, Kind: KindAuthorization, Message: "只有房主可以执行该操作"}
	ErrNotDrawer        = &GameError{Code: protocol.ErrCodeNotDrawer, Kind: KindAuthorization, Message: "只有画手可以选词"}
)

// 内部错误，不直接返回给客户端
var (
	ErrStaleOperation    = &GameError{Code: protocol.ErrCodeUnknown, Kind: KindStale, Message: "操作已过期"}
	ErrIllegalTransition = &GameError{Code: protocol.ErrCodeUnknown, Kind: KindInternal, Message: "非法的阶段切换"}
)

// KindOf 返回错误分类，非 GameError 视为内部错误
func KindOf(err error) Kind {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// IsStale 是否为可静默忽略的过期操作
func IsStale(err error) bool {
	return err != nil && KindOf(err) == KindStale
}
