package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("未知命令，输入 /help 查看帮助")
	ErrMissingArgs    = errors.New("缺少参数")
	ErrInvalidPoint   = errors.New("坐标格式应为 x,y")
)

// Command 输入行解析结果，非 / 开头的输入视为聊天
type Command struct {
	Name string
	Args []string
}

// 命令名 -> 最少参数个数
var commandArgs = map[string]int{
	"create": 1,
	"join":   2,
	"leave":  0,
	"list":   0,
	"start":  0,
	"choose": 1,
	"draw":   2,
	"clear":  0,
	"new":    0,
	"ready":  0,
	"ping":   0,
	"help":   0,
	"quit":   0,
}

// helpText 命令帮助
const helpText = `/create <昵称>        创建房间
/join <房间号> <昵称>  加入房间
/list                 查看房间列表
/leave                离开房间
/start                开始游戏（房主）
/choose <序号|词语>    选词（画手）
/draw x,y x,y ...     画一笔（画手）
/clear                清空画布（画手）
/new                  开启新一局（房主）
/ready                参加新一局
/ping                 测量延迟
/quit                 退出
其他输入作为聊天或猜词发送`

// ParseCommand 解析一行输入
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{Name: "say", Args: []string{line}}, nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}
	name := strings.ToLower(fields[0])
	minArgs, ok := commandArgs[name]
	if !ok {
		return Command{}, ErrUnknownCommand
	}
	args := fields[1:]
	if len(args) < minArgs {
		return Command{}, fmt.Errorf("/%s: %w", name, ErrMissingArgs)
	}

	switch name {
	case "create":
		// 昵称允许包含空格
		args = []string{strings.Join(args, " ")}
	case "join":
		args = []string{args[0], strings.Join(args[1:], " ")}
	case "choose":
		args = []string{strings.Join(args, " ")}
	}
	return Command{Name: name, Args: args}, nil
}

// ParsePath 将 "x,y" 坐标序列转为笔画路径 [[x,y],...]
func ParsePath(points []string) (json.RawMessage, error) {
	path := make([][2]float64, 0, len(points))
	for _, p := range points {
		xs, ys, ok := strings.Cut(p, ",")
		if !ok {
			return nil, fmt.Errorf("%q: %w", p, ErrInvalidPoint)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, ErrInvalidPoint)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, ErrInvalidPoint)
		}
		path = append(path, [2]float64{x, y})
	}
	return json.Marshal(path)
}

// resolveChoice 支持按序号（从 1 开始）或直接输入词语选词
func resolveChoice(arg string, options []string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return arg
}
