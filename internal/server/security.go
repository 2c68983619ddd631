package server

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// --- 令牌桶限流 ---

// keyedLimiter 按 key（IP 或连接 ID）分配独立令牌桶
type keyedLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func newKeyedLimiter(cfg config.RateLimitConfig) *keyedLimiter {
	return &keyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(cfg.PerSecond),
		burst:    cfg.Burst,
	}
}

func (kl *keyedLimiter) allow(key string) bool {
	kl.mu.Lock()
	limiter, ok := kl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(kl.rate, kl.burst)
		kl.limiters[key] = limiter
	}
	kl.mu.Unlock()
	return limiter.Allow()
}

func (kl *keyedLimiter) remove(key string) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	delete(kl.limiters, key)
}

// prune 删除已回满的令牌桶，回满的桶与新建的桶等价
func (kl *keyedLimiter) prune() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	removed := 0
	for key, limiter := range kl.limiters {
		if limiter.Tokens() >= float64(kl.burst) {
			delete(kl.limiters, key)
			removed++
		}
	}
	return removed
}

func (kl *keyedLimiter) size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

// ChatRateLimiter 每个连接的发言限流
type ChatRateLimiter struct {
	*keyedLimiter
}

var _ types.ChatLimiter = (*ChatRateLimiter)(nil)

// NewChatRateLimiter 创建发言限流器
func NewChatRateLimiter(cfg config.RateLimitConfig) *ChatRateLimiter {
	return &ChatRateLimiter{keyedLimiter: newKeyedLimiter(cfg)}
}

// AllowChat 检查是否允许发言
func (cl *ChatRateLimiter) AllowChat(clientID string) (allowed bool, reason string) {
	if cl.allow(clientID) {
		return true, ""
	}
	return false, "发言过于频繁，请稍后再试"
}

// RemoveClient 连接断开时释放令牌桶
func (cl *ChatRateLimiter) RemoveClient(clientID string) {
	cl.remove(clientID)
}

// ConnRateLimiter 每个 IP 的建连限流
type ConnRateLimiter struct {
	*keyedLimiter
}

// NewConnRateLimiter 创建建连限流器
func NewConnRateLimiter(cfg config.RateLimitConfig) *ConnRateLimiter {
	return &ConnRateLimiter{keyedLimiter: newKeyedLimiter(cfg)}
}

// Allow 检查 IP 是否允许建立新连接
func (cl *ConnRateLimiter) Allow(ip string) bool {
	return cl.allow(ip)
}

// Prune 清理空闲 IP 的令牌桶，返回清理数量
func (cl *ConnRateLimiter) Prune() int {
	return cl.prune()
}

// --- 来源验证 ---

// OriginChecker 来源验证器
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{
		allowedOrigins: make(map[string]bool),
	}

	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(origin)] = true
	}

	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 没有 Origin 头，可能是同源请求或本地客户端
		return true
	}

	return oc.allowedOrigins[strings.ToLower(origin)]
}

// --- 辅助函数 ---

// GetClientIP 获取客户端 IP。
// 代理头由路由上的 middleware.RealIP 统一改写到 RemoteAddr，这里不再读取请求头
func GetClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
