package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/transport"
)

const maxLogLines = 500

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg 正在重连消息
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// LatencyMsg 延迟更新
type LatencyMsg struct {
	Millis int64
}

// Model 终端客户端
type Model struct {
	client *transport.Client
	events chan tea.Msg

	connected bool
	status    string
	latency   int64

	// 房间状态
	roomCode    string
	selfID      string
	hostID      string
	phase       string
	players     []protocol.PlayerInfo
	drawerID    string
	round       int
	totalRounds int
	maskedWord  string
	secretWord  string
	options     []string
	strokes     int

	lines    []string
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewModel 创建终端客户端 model
func NewModel(serverURL string, format codec.Format) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入 /help 查看命令，直接输入即聊天或猜词"
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()

	c := transport.NewClient(serverURL, format)
	events := make(chan tea.Msg, 16)

	c.OnReconnecting = func(attempt, maxTries int) {
		select {
		case events <- ReconnectingMsg{Attempt: attempt, MaxTries: maxTries}:
		default:
		}
	}
	c.OnLatencyUpdate = func(ms int64) {
		select {
		case events <- LatencyMsg{Millis: ms}:
		default:
		}
	}

	return &Model{
		client:   c,
		events:   events,
		status:   "正在连接服务器...",
		input:    ti,
		viewport: viewport.New(80, 15),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connectToServer(), textinput.Blink, m.listenForEvents())
}

func (m *Model) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息，重连后沿用同一接收通道
func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(msg.Width-8, 20)
		m.viewport.Height = max(msg.Height-14, 5)
		m.input.Width = max(msg.Width-12, 20)
		m.refreshLog()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.client.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			return m, m.submit(line)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case ConnectedMsg:
		m.connected = true
		m.status = "已连接"
		m.client.StartHeartbeat()
		m.appendSystem("已连接到服务器，输入 /help 查看命令")
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.connected = false
		m.status = fmt.Sprintf("连接断开: %v（按 ESC 退出）", msg.Err)

	case ReconnectingMsg:
		m.status = fmt.Sprintf("🔄 正在重连 (%d/%d)...", msg.Attempt, msg.MaxTries)
		cmds = append(cmds, m.listenForEvents())

	case LatencyMsg:
		m.latency = msg.Millis
		cmds = append(cmds, m.listenForEvents())

	case ServerMessage:
		m.handleServerMessage(msg.Msg)
		cmds = append(cmds, m.listenForMessages())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit 解析并执行一行输入
func (m *Model) submit(line string) tea.Cmd {
	cmd, err := ParseCommand(line)
	if err != nil {
		m.appendError(err.Error())
		return nil
	}
	if cmd.Name == "quit" {
		m.client.Close()
		return tea.Quit
	}
	if err := m.execute(cmd); err != nil {
		m.appendError(err.Error())
	}
	return nil
}

func (m *Model) execute(cmd Command) error {
	c := m.client
	switch cmd.Name {
	case "say":
		return c.Say(cmd.Args[0])
	case "create":
		return c.CreateRoom(cmd.Args[0])
	case "join":
		return c.JoinRoom(cmd.Args[0], cmd.Args[1])
	case "leave":
		m.resetRoom()
		m.appendSystem("已离开房间")
		return c.LeaveRoom()
	case "list":
		return c.GetRoomList()
	case "start":
		return c.StartGame()
	case "choose":
		return c.ChooseWord(resolveChoice(cmd.Args[0], m.options))
	case "draw":
		path, err := ParsePath(cmd.Args)
		if err != nil {
			return err
		}
		m.strokes++
		return c.Draw(path)
	case "clear":
		m.strokes = 0
		return c.ClearCanvas()
	case "new":
		return c.StartNewGame()
	case "ready":
		return c.JoinNewGame()
	case "ping":
		return c.Ping()
	case "help":
		for l := range strings.SplitSeq(helpText, "\n") {
			m.appendLine(statusStyle.Render(l))
		}
	}
	return nil
}

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle("🎨 你画我猜"))
	sb.WriteString("  ")
	sb.WriteString(m.headerLine())
	sb.WriteString("\n\n")

	if len(m.players) > 0 {
		sb.WriteString(boxStyle.Render(m.playersView()))
		sb.WriteString("\n")
	}

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(promptStyle.Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(m.statusLine()))

	return docStyle.Render(sb.String())
}

func (m *Model) headerLine() string {
	if m.roomCode == "" {
		return statusStyle.Render("大厅")
	}
	parts := []string{"房间 " + wordStyle.Render(m.roomCode)}
	if m.round > 0 {
		parts = append(parts, fmt.Sprintf("第 %d/%d 轮", m.round, m.totalRounds))
	}
	if m.drawerID != "" {
		parts = append(parts, "画手 "+nameStyle.Render(m.nameOf(m.drawerID)))
	}
	switch {
	case m.secretWord != "":
		parts = append(parts, "谜底 "+wordStyle.Render(m.secretWord))
	case m.maskedWord != "":
		parts = append(parts, "提示 "+wordStyle.Render(spaced(m.maskedWord)))
	}
	return strings.Join(parts, " | ")
}

func (m *Model) playersView() string {
	rows := make([]string, 0, len(m.players))
	for _, p := range m.players {
		var icons string
		if p.IsHost {
			icons += HostIcon
		}
		if p.ID == m.drawerID {
			icons += DrawerIcon
		}
		if !p.Online {
			icons += OfflineIcon
		}
		name := p.Name
		if p.ID == m.selfID {
			name += " (我)"
		}
		rows = append(rows, fmt.Sprintf("%s %s %d", icons, nameStyle.Render(name), p.Score))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) statusLine() string {
	s := m.status
	if m.connected {
		s += fmt.Sprintf(" · 延迟 %dms", m.latency)
	}
	if m.strokes > 0 && m.drawerID == m.selfID {
		s += fmt.Sprintf(" · 已画 %d 笔", m.strokes)
	}
	return s
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.refreshLog()
}

func (m *Model) appendSystem(text string) {
	m.appendLine(systemStyle.Render("· " + text))
}

func (m *Model) appendError(text string) {
	m.appendLine(errorStyle.Render("✗ " + text))
}

func (m *Model) refreshLog() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// spaced 字符间加空格，便于数出占位符
func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
