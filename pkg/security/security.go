package security

import (
	"fmt"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/util"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	allowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With"
	allowMethods = "GET, POST, OPTIONS"
)

// CORS 仅对白名单 Origin 回写允许头，预检请求直接返回 204
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := origins[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Allow-Methods", allowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Secure 基础安全响应头；接口只返回 JSON，不允许被嵌入页面
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore 按客户端 IP 保存令牌桶，空闲超过 idle 的条目由 sweep 清理
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idle    time.Duration
}

func (s *limiterStore) allow(key string, now time.Time) bool {
	s.mu.Lock()
	cl, ok := s.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = now
	s.mu.Unlock()
	return cl.limiter.AllowN(now, 1)
}

func (s *limiterStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, cl := range s.clients {
		if now.Sub(cl.lastSeen) > s.idle {
			delete(s.clients, key)
		}
	}
}

// RateLimiter 每个 IP 在 window_minutes 内最多 max_requests 次请求。
// 配置非法时返回错误，由调用方在组装路由时拒绝启动。
func RateLimiter(cfg config.RateLimitConfig) (gin.HandlerFunc, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	window := time.Duration(cfg.WindowMinutes) * time.Minute

	store := &limiterStore{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(cfg.MaxRequests) / window.Seconds()),
		burst:   cfg.MaxRequests,
		idle:    window * 3,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			store.sweep(now)
		}
	}()

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP(), time.Now()) {
			util.Error(c, http.StatusTooManyRequests, fmt.Sprintf("Too many requests, limit is %d per %s", cfg.MaxRequests, window))
			c.Abort()
			return
		}
		c.Next()
	}, nil
}
