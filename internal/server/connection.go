package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

const defaultLeaderboardLimit = 10

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		logger.Infof("🔧 维护模式，拒绝新连接: %s", clientIP)
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制检查，信号量在连接断开后释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		logger.Warnf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	if !s.connLimiter.Allow(clientIP) {
		release()
		logger.Warnf("🚫 IP %s 请求过于频繁", clientIP)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 来源不符时 Upgrade 会返回 403
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		logger.Warnf("WebSocket 升级失败 (IP: %s, Origin: %s): %v", clientIP, r.Header.Get("Origin"), err)
		return
	}

	client := NewClient(s, conn, clientIP)
	s.registerClient(client)

	logger.Infof("✅ 连接 %s (%s) 已建立", client.ID, clientIP)

	go func() {
		defer release()
		client.ReadPump()
	}()
	go client.WritePump()
}

// healthResponse 健康检查结果
type healthResponse struct {
	Status      string `json:"status"`
	Online      int    `json:"online"`
	Rooms       int    `json:"rooms"`
	ActiveGames int    `json:"active_games"`
	Redis       bool   `json:"redis"`
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.IsMaintenanceMode() {
		status = "maintenance"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      status,
		Online:      s.GetOnlineCount(),
		Rooms:       s.roomManager.RoomCount(),
		ActiveGames: s.roomManager.GetActiveGamesCount(),
		Redis:       s.redis != nil,
	})
}

// handleRooms 可加入的房间列表
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.roomManager.GetRoomList()
	if rooms == nil {
		rooms = []protocol.RoomListItem{}
	}
	writeJSON(w, http.StatusOK, protocol.RoomListResultPayload{Rooms: rooms})
}

// handleLeaderboard 累计积分排行榜，需要启用 Redis
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		http.Error(w, "leaderboard disabled", http.StatusNotFound)
		return
	}

	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.leaderboard.GetLeaderboard(r.Context(), limit)
	if err != nil {
		logger.Errorf("获取排行榜失败: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("写入响应失败: %v", err)
	}
}
