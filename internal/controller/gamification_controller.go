package controller

import (
	"errors"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	PointService    *service.PointService
	ProgressService *service.ProgressService
}

func NewGamificationController(pointService *service.PointService, progressService *service.ProgressService) *GamificationController {
	return &GamificationController{
		PointService:    pointService,
		ProgressService: progressService,
	}
}

// AwardPointsRequest 学习者身份取自会话，不接受请求体中的学习者 ID
type AwardPointsRequest struct {
	ActivityType  string                 `json:"activityType"`
	ReferenceID   *uint                  `json:"referenceId"`
	ReferenceType *string                `json:"referenceType"`
	Language      string                 `json:"language" binding:"max=10"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// respondError 按错误类别映射状态码，存储错误不向客户端暴露细节
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidActivity), errors.Is(err, util.ErrInvalidReference):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrDuplicateAward):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrForbidden):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrLearnerNotFound):
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 发放积分
// @Description 学习者完成活动后追加一条积分流水，返回本次获得的积分
// @Tags 积分系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body AwardPointsRequest true "活动信息"
// @Success 201 {object} util.Response{data=service.AwardResult}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /gamification/award [post]
func (c *GamificationController) AwardPoints(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AwardPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	award := service.AwardRequest{
		LearnerID:    user.UserID,
		ActivityType: model.ActivityType(strings.TrimSpace(req.ActivityType)),
		ReferenceID:  req.ReferenceID,
		Language:     req.Language,
		Metadata:     req.Metadata,
	}
	if req.ReferenceType != nil && strings.TrimSpace(*req.ReferenceType) != "" {
		refType := model.ReferenceType(strings.TrimSpace(*req.ReferenceType))
		award.ReferenceType = &refType
	}

	result, err := c.PointService.AwardPoints(ctx.Request.Context(), award)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 获取学习进度
// @Description 汇总指定学习者的积分、课程完成度、等级与连续学习天数
// @Tags 积分系统
// @Produce json
// @Security ApiKeyAuth
// @Param learnerId path int true "学习者ID"
// @Param language query string false "仅统计该语言的积分"
// @Success 200 {object} util.Response{data=model.ProgressSnapshot}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /gamification/progress/{learnerId} [get]
func (c *GamificationController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	learnerID, err := strconv.ParseUint(ctx.Param("learnerId"), 10, 32)
	if err != nil || learnerID == 0 {
		util.BadRequest(ctx, "Invalid learner ID")
		return
	}

	// 先鉴权再汇总，无权限时不触发任何读取
	if !service.CanViewProgress(user.Role, user.UserID, uint(learnerID)) {
		respondError(ctx, util.ErrForbidden)
		return
	}

	c.renderProgress(ctx, uint(learnerID))
}

// @Summary 获取我的学习进度
// @Tags 积分系统
// @Produce json
// @Security ApiKeyAuth
// @Param language query string false "仅统计该语言的积分"
// @Success 200 {object} util.Response{data=model.ProgressSnapshot}
// @Router /gamification/progress [get]
func (c *GamificationController) GetMyProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	c.renderProgress(ctx, user.UserID)
}

func (c *GamificationController) renderProgress(ctx *gin.Context, learnerID uint) {
	snapshot, err := c.ProgressService.GetProgress(ctx.Request.Context(), learnerID, service.ProgressOptions{
		Language: ctx.Query("language"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// @Summary 查询已有积分流水
// @Description 按内容查询当前用户的流水，调用方据此实现“只奖励一次”
// @Tags 积分系统
// @Produce json
// @Security ApiKeyAuth
// @Param referenceType query string true "内容类型 (course/lesson/topic/quiz/game)"
// @Param referenceIds query string false "逗号分隔的内容ID"
// @Success 200 {object} util.Response{data=[]model.PointAward}
// @Failure 400 {object} util.Response
// @Router /gamification/awards [get]
func (c *GamificationController) ListAwards(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	refIDs, err := util.ParseUintList(ctx.Query("referenceIds"))
	if err != nil {
		util.BadRequest(ctx, "Invalid reference IDs")
		return
	}

	awards, err := c.PointService.ListAwards(ctx.Request.Context(), user.UserID, model.ReferenceType(ctx.Query("referenceType")), refIDs)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, awards)
}

// @Summary 活动积分表
// @Description 当前生效的各活动默认积分
// @Tags 积分系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /gamification/activity-types [get]
func (c *GamificationController) ListActivityTypes(ctx *gin.Context) {
	util.Success(ctx, c.PointService.ActivityPoints())
}
