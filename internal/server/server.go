package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/server/handler"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	format      codec.Format
	redis       *redis.Client
	leaderboard *storage.Leaderboard
	roomManager *room.RoomManager
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	originChecker *OriginChecker
	connLimiter   *ConnRateLimiter
	chatLimiter   *ChatRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer 创建服务器实例，Redis 未启用时房间快照、聊天日志和排行榜均不落盘
func NewServer(cfg *config.Config, opts ...room.Option) (*Server, error) {
	s := &Server{
		config:         cfg,
		format:         codec.ParseFormat(cfg.Server.WireFormat),
		clients:        make(map[string]*Client),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		connLimiter:    NewConnRateLimiter(cfg.Security.ConnLimit),
		chatLimiter:    NewChatRateLimiter(cfg.Security.ChatLimit),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stop:           make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	roomOpts := []room.Option{room.WithLedger(storage.LogLedger{})}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// 测试 Redis 连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}

		s.redis = rdb
		s.leaderboard = storage.NewLeaderboard(rdb)
		roomOpts = append(roomOpts,
			room.WithStore(storage.NewRedisStore(rdb)),
			room.WithEventLog(storage.NewEventLog(rdb)),
			room.WithLeaderboard(s.leaderboard),
		)
	}

	// 初始化房间管理器，调用方选项优先
	s.roomManager = room.NewRoomManager(cfg.Game, append(roomOpts, opts...)...)

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Rooms:       s.roomManager,
		ChatLimiter: s.chatLimiter,
	})

	logger.Infof("🔒 安全配置: 建连限制=%.1f/s, 聊天限制=%.1f/s, 最大连接数=%d, 编码=%s",
		cfg.Security.ConnLimit.PerSecond, cfg.Security.ChatLimit.PerSecond, cfg.Server.MaxConnections, s.format)

	return s, nil
}

// Router 构建 HTTP 路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/rooms", s.handleRooms)
	r.Get("/leaderboard", s.handleLeaderboard)
	return r
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	// 启动监控 goroutine
	go s.monitorStats()

	logger.Infof("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		logger.Infof("❌ 连接 %s (%s) 已断开", client.ID, client.IP)
	}
}

// GetOnlineCount 获取在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
