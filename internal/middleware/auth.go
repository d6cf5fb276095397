package middleware

import (
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func knownRole(role model.UserRole) bool {
	switch role {
	case model.Student, model.Teacher, model.ContentCreator, model.Parent, model.Admin:
		return true
	}
	return false
}

// AuthMiddleware 解析身份服务签发的 Bearer Token，将 Claims 放入上下文
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("jwt parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if claims.UserID == 0 || !knownRole(claims.Role) {
			logger.Log.Warn("jwt carries unknown identity",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", string(claims.Role)),
			)
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

// ActivityMiddleware 异步记录最后活跃时间，失败只记日志，不影响主流程
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			userID := claims.UserID
			go func() {
				if err := repo.UpdateLastSeen(userID); err != nil {
					logger.Log.Warn("update last seen failed", zap.Uint("user_id", userID), zap.Error(err))
				}
			}()
		}
		c.Next()
	}
}
