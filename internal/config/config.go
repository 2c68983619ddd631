package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 10000
	defaultWireFormat     = "json"
	defaultRedisAddr      = "localhost:6379"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"

	defaultChooseWordSeconds   = 5
	defaultDrawingSeconds      = 30
	defaultResultsSeconds      = 5
	defaultFinalResultsSeconds = 10
	defaultGraceSeconds        = 3
	defaultRoomTimeout         = 10 // 分钟
	defaultMaxPlayers          = 12
	defaultMaxNameLength       = 20
	defaultRoomCodeLength      = 6

	defaultChatPerSecond = 2
	defaultChatBurst     = 5
	defaultConnPerSecond = 5
	defaultConnBurst     = 10
)

var defaultHintSeconds = []int{10, 20}

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	WireFormat     string `yaml:"wire_format"` // json / protobuf
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	ChooseWordSeconds   int      `yaml:"choose_word_seconds"`   // 选词时长
	DrawingSeconds      int      `yaml:"drawing_seconds"`       // 绘画时长
	HintSeconds         []int    `yaml:"hint_seconds"`          // 提示时间点（绘画开始后）
	ResultsSeconds      int      `yaml:"results_seconds"`       // 本轮结果展示时长
	FinalResultsSeconds int      `yaml:"final_results_seconds"` // 最终排名展示时长
	GraceSeconds        int      `yaml:"grace_seconds"`         // 断线宽限期
	RoomTimeout         int      `yaml:"room_timeout"`          // 房间等待超时（分钟）
	MaxPlayers          int      `yaml:"max_players"`
	MaxNameLength       int      `yaml:"max_name_length"`
	RoomCodeLength      int      `yaml:"room_code_length"`
	Words               []string `yaml:"words"` // 为空时使用内置词库
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins"`
	ChatLimit      RateLimitConfig `yaml:"chat_limit"` // 每个连接的发言速率
	ConnLimit      RateLimitConfig `yaml:"conn_limit"` // 每个 IP 的建连速率
}

// RateLimitConfig 令牌桶限流参数
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console / json
}

// ChooseWordDuration 返回选词时长
func (c *GameConfig) ChooseWordDuration() time.Duration {
	return time.Duration(c.ChooseWordSeconds) * time.Second
}

// DrawingDuration 返回绘画时长
func (c *GameConfig) DrawingDuration() time.Duration {
	return time.Duration(c.DrawingSeconds) * time.Second
}

// HintDelays 返回各提示相对绘画开始的延迟
func (c *GameConfig) HintDelays() []time.Duration {
	delays := make([]time.Duration, len(c.HintSeconds))
	for i, s := range c.HintSeconds {
		delays[i] = time.Duration(s) * time.Second
	}
	return delays
}

// ResultsDuration 返回本轮结果展示时长
func (c *GameConfig) ResultsDuration() time.Duration {
	return time.Duration(c.ResultsSeconds) * time.Second
}

// FinalResultsDuration 返回最终排名展示时长
func (c *GameConfig) FinalResultsDuration() time.Duration {
	return time.Duration(c.FinalResultsSeconds) * time.Second
}

// GraceDuration 返回断线宽限期
func (c *GameConfig) GraceDuration() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}

// RoomTimeoutDuration 返回房间等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// Load 加载配置文件，环境变量优先于文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = defaultMaxConnections
	}
	if cfg.Server.WireFormat == "" {
		cfg.Server.WireFormat = defaultWireFormat
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaultRedisAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}

	g := &cfg.Game
	if g.ChooseWordSeconds == 0 {
		g.ChooseWordSeconds = defaultChooseWordSeconds
	}
	if g.DrawingSeconds == 0 {
		g.DrawingSeconds = defaultDrawingSeconds
	}
	if len(g.HintSeconds) == 0 {
		g.HintSeconds = append([]int(nil), defaultHintSeconds...)
	}
	if g.ResultsSeconds == 0 {
		g.ResultsSeconds = defaultResultsSeconds
	}
	if g.FinalResultsSeconds == 0 {
		g.FinalResultsSeconds = defaultFinalResultsSeconds
	}
	if g.GraceSeconds == 0 {
		g.GraceSeconds = defaultGraceSeconds
	}
	if g.RoomTimeout == 0 {
		g.RoomTimeout = defaultRoomTimeout
	}
	if g.MaxPlayers == 0 {
		g.MaxPlayers = defaultMaxPlayers
	}
	if g.MaxNameLength == 0 {
		g.MaxNameLength = defaultMaxNameLength
	}
	if g.RoomCodeLength == 0 {
		g.RoomCodeLength = defaultRoomCodeLength
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
	if cfg.Security.ChatLimit.PerSecond == 0 {
		cfg.Security.ChatLimit.PerSecond = defaultChatPerSecond
	}
	if cfg.Security.ChatLimit.Burst == 0 {
		cfg.Security.ChatLimit.Burst = defaultChatBurst
	}
	if cfg.Security.ConnLimit.PerSecond == 0 {
		cfg.Security.ConnLimit.PerSecond = defaultConnPerSecond
	}
	if cfg.Security.ConnLimit.Burst == 0 {
		cfg.Security.ConnLimit.Burst = defaultConnBurst
	}
}

// applyEnv 读取环境变量覆盖
func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v, ok := envInt("SERVER_PORT"); ok {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SERVER_WIRE_FORMAT"); v != "" {
		cfg.Server.WireFormat = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v, ok := envInt("GAME_DRAWING_SECONDS"); ok {
		cfg.Game.DrawingSeconds = v
	}
	if v, ok := envInt("GAME_GRACE_SECONDS"); ok {
		cfg.Game.GraceSeconds = v
	}
	if v := os.Getenv("SECURITY_ALLOWED_ORIGINS"); v != "" {
		cfg.Security.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
