package room

// Phase 房间阶段
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseChooseWord
	PhaseDrawing
	PhaseResults
	PhaseFinalResults
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseChooseWord:
		return "choose_word"
	case PhaseDrawing:
		return "drawing"
	case PhaseResults:
		return "results"
	case PhaseFinalResults:
		return "final_results"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// InGame 是否处于一局游戏的回合阶段
func (p Phase) InGame() bool {
	return p == PhaseChooseWord || p == PhaseDrawing || p == PhaseResults
}

// transitions 合法的阶段切换表
var transitions = map[Phase][]Phase{
	PhaseLobby: {PhaseChooseWord},
	// 选词阶段自环：画手离开后跳到下一轮
	PhaseChooseWord:   {PhaseDrawing, PhaseChooseWord, PhaseFinalResults},
	PhaseDrawing:      {PhaseResults, PhaseChooseWord, PhaseFinalResults},
	PhaseResults:      {PhaseChooseWord, PhaseFinalResults},
	PhaseFinalResults: {PhaseGameOver},
	PhaseGameOver:     {PhaseLobby},
}

// CanTransition 检查阶段切换是否合法
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
