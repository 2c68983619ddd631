package ui

import (
	"fmt"
	"strings"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// handleServerMessage 更新本地状态并追加日志
func (m *Model) handleServerMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		if p, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg); err == nil {
			m.enterRoom(p.RoomCode, p.Player.ID)
			m.appendSystem(fmt.Sprintf("房间 %s 已创建，把房间号发给朋友吧", p.RoomCode))
		}

	case protocol.MsgRoomJoined:
		if p, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg); err == nil {
			m.enterRoom(p.RoomCode, p.Player.ID)
			m.players = p.Players
			m.appendSystem("已加入房间 " + p.RoomCode)
		}

	case protocol.MsgRoomState:
		if p, err := codec.ParsePayload[protocol.RoomStatePayload](msg); err == nil {
			m.applyRoomState(p)
		}

	case protocol.MsgRoomResync:
		if p, err := codec.ParsePayload[protocol.ResyncPayload](msg); err == nil {
			m.applyResync(p)
		}

	case protocol.MsgRoomListResult:
		if p, err := codec.ParsePayload[protocol.RoomListResultPayload](msg); err == nil {
			if len(p.Rooms) == 0 {
				m.appendSystem("暂无可加入的房间")
				return
			}
			for _, r := range p.Rooms {
				m.appendSystem(fmt.Sprintf("房间 %s  %d/%d", r.RoomCode, r.PlayerCount, r.MaxPlayers))
			}
		}

	case protocol.MsgChooseWordPhase:
		if p, err := codec.ParsePayload[protocol.ChooseWordPhasePayload](msg); err == nil {
			m.startRound(p.DrawerID, p.Round, p.TotalRounds)
			m.appendSystem(fmt.Sprintf("第 %d/%d 轮，%s 正在选词", p.Round, p.TotalRounds, p.DrawerName))
		}

	case protocol.MsgWordOptions:
		if p, err := codec.ParsePayload[protocol.WordOptionsPayload](msg); err == nil {
			m.options = p.Options
			opts := make([]string, len(p.Options))
			for i, w := range p.Options {
				opts[i] = fmt.Sprintf("%d) %s", i+1, wordStyle.Render(w))
			}
			m.appendLine("轮到你画了，用 /choose 选词: " + strings.Join(opts, "  "))
		}

	case protocol.MsgDrawingPhase:
		if p, err := codec.ParsePayload[protocol.DrawingPhasePayload](msg); err == nil {
			m.drawerID = p.DrawerID
			m.maskedWord = p.MaskedWord
			m.options = nil
			m.appendSystem(p.DrawerName + " 开始作画")
		}

	case protocol.MsgSecretWord:
		if p, err := codec.ParsePayload[protocol.SecretWordPayload](msg); err == nil {
			m.secretWord = p.Word
			m.appendLine("你要画的是 " + wordStyle.Render(p.Word))
		}

	case protocol.MsgWordHint:
		if p, err := codec.ParsePayload[protocol.WordHintPayload](msg); err == nil {
			m.maskedWord = p.MaskedWord
			m.appendSystem(fmt.Sprintf("提示: 第 %d 个字是 %s", p.Position+1, p.Char))
		}

	case protocol.MsgDraw:
		if p, err := codec.ParsePayload[protocol.DrawPayload](msg); err == nil {
			m.strokes++
			m.appendLine(statusStyle.Render(fmt.Sprintf("%s 画了一笔 %s", m.nameOf(p.SenderID), string(p.Path))))
		}

	case protocol.MsgCanvasCleared:
		m.strokes = 0
		m.appendSystem("画布已清空")

	case protocol.MsgGuessResult:
		if p, err := codec.ParsePayload[protocol.GuessResultPayload](msg); err == nil && p.Correct {
			m.maskedWord = p.Word
			if p.AlreadyGuessed {
				m.appendLine(correctStyle.Render("你本轮已猜中: " + p.Word))
			} else {
				m.appendLine(correctStyle.Render(fmt.Sprintf("🎉 猜对了！+%d 分", p.Points)))
			}
		}

	case protocol.MsgRoundResults:
		if p, err := codec.ParsePayload[protocol.RoundResultsPayload](msg); err == nil {
			m.players = p.Players
			m.appendLine(fmt.Sprintf("第 %d 轮结束，答案是 %s", p.Round, wordStyle.Render(p.Word)))
			for _, s := range p.RoundScores {
				m.appendSystem(fmt.Sprintf("%s +%d (%s)", m.nameOf(s.PlayerID), s.Points, s.Reason))
			}
			m.endRound()
		}

	case protocol.MsgFinalResults:
		if p, err := codec.ParsePayload[protocol.FinalResultsPayload](msg); err == nil {
			m.endRound()
			m.drawerID = ""
			m.round = 0
			m.appendLine(titleStyle("🏆 最终排名"))
			m.appendRanking(p.Ranking)
		}

	case protocol.MsgGameOver:
		if _, err := codec.ParsePayload[protocol.GameOverPayload](msg); err == nil {
			m.appendSystem("本局结束，房主可输入 /new 开启新一局，其他玩家输入 /ready 参加")
		}

	case protocol.MsgChat:
		if p, err := codec.ParsePayload[protocol.ChatPayload](msg); err == nil {
			m.appendChat(p)
		}

	case protocol.MsgSystem:
		if p, err := codec.ParsePayload[protocol.SystemPayload](msg); err == nil {
			m.appendSystem(p.Text)
		}

	case protocol.MsgPong:
		m.status = "已连接"

	case protocol.MsgError:
		if p, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.appendError(p.Message)
		}
	}
}

func (m *Model) enterRoom(code, selfID string) {
	m.resetRoom()
	m.roomCode = code
	m.selfID = selfID
	m.status = "已连接"
}

func (m *Model) resetRoom() {
	m.roomCode, m.selfID, m.hostID, m.phase = "", "", "", ""
	m.players = nil
	m.round, m.totalRounds = 0, 0
	m.drawerID = ""
	m.endRound()
}

func (m *Model) startRound(drawerID string, round, total int) {
	m.endRound()
	m.drawerID = drawerID
	m.round = round
	m.totalRounds = total
}

func (m *Model) endRound() {
	m.maskedWord, m.secretWord = "", ""
	m.options = nil
	m.strokes = 0
}

func (m *Model) applyRoomState(s *protocol.RoomStatePayload) {
	m.roomCode = s.RoomCode
	m.hostID = s.HostID
	m.phase = s.Phase
	m.players = s.Players
}

func (m *Model) applyResync(p *protocol.ResyncPayload) {
	m.applyRoomState(&p.Room)
	m.selfID = p.SelfID
	m.drawerID = p.DrawerID
	m.round, m.totalRounds = p.Round, p.TotalRounds
	m.secretWord, m.maskedWord = p.SecretWord, p.MaskedWord
	m.options = p.WordOptions
	m.strokes = len(p.CanvasHistory)
	m.status = "✅ 重连成功"

	m.appendSystem(fmt.Sprintf("已重新连接房间 %s", p.Room.RoomCode))
	for i := range p.ChatHistory {
		m.appendChat(&p.ChatHistory[i])
	}
	if len(p.WordOptions) > 0 {
		m.appendLine("请用 /choose 选词: " + strings.Join(p.WordOptions, " / "))
	}
	if len(p.Ranking) > 0 {
		m.appendRanking(p.Ranking)
	}
}

func (m *Model) appendChat(p *protocol.ChatPayload) {
	m.appendLine(nameStyle.Render(p.SenderName+":") + " " + p.Text)
}

func (m *Model) appendRanking(ranking []protocol.RankingEntry) {
	for _, r := range ranking {
		m.appendLine(fmt.Sprintf("%d. %s  %d 分", r.Rank, nameStyle.Render(r.Name), r.Score))
	}
}

func (m *Model) nameOf(id string) string {
	for _, p := range m.players {
		if p.ID == id {
			return p.Name
		}
	}
	return "?"
}
