package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/logger"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AwardStore 积分流水写入与按内容查询
type AwardStore interface {
	Create(ctx context.Context, award *model.PointAward) error
	ExistsForReference(ctx context.Context, learnerID uint, activity model.ActivityType, refType model.ReferenceType, refID uint) (bool, error)
	FindByReferences(ctx context.Context, learnerID uint, refType model.ReferenceType, refIDs []uint) ([]model.PointAward, error)
}

// ContentPointSource 查询内容自身配置的分值
type ContentPointSource interface {
	PointValue(ctx context.Context, refType model.ReferenceType, refID uint) (int, error)
}

type PointService struct {
	Awards   AwardStore
	Content  ContentPointSource
	Policies *PolicyStore
	Guard    AwardGuard
}

func NewPointService(awards AwardStore, content ContentPointSource, policies *PolicyStore, guard AwardGuard) *PointService {
	return &PointService{
		Awards:   awards,
		Content:  content,
		Policies: policies,
		Guard:    guard,
	}
}

// AwardRequest 学习者身份由调用方从会话中解析，本服务直接信任
type AwardRequest struct {
	LearnerID     uint
	ActivityType  model.ActivityType
	ReferenceID   *uint
	ReferenceType *model.ReferenceType
	Language      string
	Metadata      map[string]interface{}
}

type AwardResult struct {
	AwardID       string `json:"awardId"`
	PointsGranted int    `json:"pointsGranted"`
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %v", util.ErrPersistenceFailure, err)
}

func validateReference(refID *uint, refType *model.ReferenceType) error {
	if (refID == nil) != (refType == nil) {
		return fmt.Errorf("%w: referenceId and referenceType must be given together", util.ErrInvalidReference)
	}
	if refType != nil && !refType.Valid() {
		return fmt.Errorf("%w: unknown reference type %q", util.ErrInvalidReference, *refType)
	}
	return nil
}

// AwardPoints 校验活动、计算分值并追加一条流水。
// 默认不做幂等：同一测验重复完成会再次得分。需要“只发一次”的调用方
// 应先用 ListAwards 查询已有流水，或配置 once_per_reference 策略。
func (s *PointService) AwardPoints(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "PointService.AwardPoints")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("learner.id", int64(req.LearnerID)),
		attribute.String("activity.type", string(req.ActivityType)),
	)

	result, err := s.award(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		monitoring.AwardFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	monitoring.PointsAwarded.WithLabelValues(string(req.ActivityType)).Add(float64(result.PointsGranted))
	logger.Log.Info("points awarded",
		zap.Uint("learner_id", req.LearnerID),
		zap.String("activity", string(req.ActivityType)),
		zap.Int("points", result.PointsGranted),
		zap.String("award_id", result.AwardID),
	)
	return result, nil
}

func (s *PointService) award(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	if !req.ActivityType.Valid() {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidActivity, req.ActivityType)
	}
	if err := validateReference(req.ReferenceID, req.ReferenceType); err != nil {
		return nil, err
	}

	policy := s.Policies.Current()
	points, err := s.resolvePoints(ctx, policy, req)
	if err != nil {
		return nil, err
	}

	heldKey, err := s.checkDuplicate(ctx, policy, req)
	if err != nil {
		return nil, err
	}

	award := &model.PointAward{
		LearnerID:     req.LearnerID,
		ActivityType:  req.ActivityType,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Points:        points,
		Language:      strings.ToLower(strings.TrimSpace(req.Language)),
	}
	if len(req.Metadata) > 0 {
		award.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.Awards.Create(ctx, award); err != nil {
		if heldKey != "" {
			if relErr := s.Guard.Release(ctx, heldKey); relErr != nil {
				logger.Log.Warn("release award guard failed", zap.String("key", heldKey), zap.Error(relErr))
			}
		}
		return nil, persistenceError(err)
	}

	return &AwardResult{AwardID: award.ID, PointsGranted: award.Points}, nil
}

// resolvePoints 活动与内容类型匹配且内容配置了正分值时，以内容分值为准；
// 内容分值为 0 或负数视为未设置，使用策略表默认分值
func (s *PointService) resolvePoints(ctx context.Context, policy *PointPolicy, req AwardRequest) (int, error) {
	points := policy.DefaultPoints(req.ActivityType)
	if req.ReferenceType == nil {
		return points, nil
	}

	qualifying, ok := req.ActivityType.QualifyingReference()
	if !ok || qualifying != *req.ReferenceType {
		return points, nil
	}

	value, err := s.Content.PointValue(ctx, *req.ReferenceType, *req.ReferenceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s #%d does not exist", util.ErrInvalidReference, *req.ReferenceType, *req.ReferenceID)
	}
	if err != nil {
		return 0, persistenceError(err)
	}
	if value > 0 {
		points = value
	}
	return points, nil
}

// checkDuplicate 按策略拦截重复发放；cooldown 模式返回需要在写入失败时释放的键
func (s *PointService) checkDuplicate(ctx context.Context, policy *PointPolicy, req AwardRequest) (string, error) {
	switch policy.DuplicatePolicy {
	case config.DuplicateOncePerReference:
		if req.ReferenceID == nil {
			return "", nil
		}
		exists, err := s.Awards.ExistsForReference(ctx, req.LearnerID, req.ActivityType, *req.ReferenceType, *req.ReferenceID)
		if err != nil {
			return "", persistenceError(err)
		}
		if exists {
			return "", fmt.Errorf("%w: %s already awarded for %s #%d", util.ErrDuplicateAward, req.ActivityType, *req.ReferenceType, *req.ReferenceID)
		}
	case config.DuplicateCooldown:
		if s.Guard == nil {
			logger.Log.Warn("cooldown duplicate policy configured without a guard, allowing award")
			return "", nil
		}
		key := guardKey(req)
		acquired, err := s.Guard.Acquire(ctx, key, policy.DuplicateCooldown)
		if err != nil {
			return "", persistenceError(err)
		}
		if !acquired {
			return "", fmt.Errorf("%w: %s is cooling down", util.ErrDuplicateAward, req.ActivityType)
		}
		return key, nil
	}
	return "", nil
}

func guardKey(req AwardRequest) string {
	if req.ReferenceID == nil {
		return fmt.Sprintf("%d:%s", req.LearnerID, req.ActivityType)
	}
	return fmt.Sprintf("%d:%s:%s:%d", req.LearnerID, req.ActivityType, *req.ReferenceType, *req.ReferenceID)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, util.ErrInvalidActivity):
		return "invalid_activity"
	case errors.Is(err, util.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, util.ErrDuplicateAward):
		return "duplicate"
	case errors.Is(err, util.ErrPersistenceFailure):
		return "persistence"
	}
	return "unknown"
}

// ListAwards 调用方实现“只发一次”语义时用来查询已有流水
func (s *PointService) ListAwards(ctx context.Context, learnerID uint, refType model.ReferenceType, refIDs []uint) ([]model.PointAward, error) {
	if !refType.Valid() {
		return nil, fmt.Errorf("%w: unknown reference type %q", util.ErrInvalidReference, refType)
	}
	awards, err := s.Awards.FindByReferences(ctx, learnerID, refType, refIDs)
	if err != nil {
		return nil, persistenceError(err)
	}
	return awards, nil
}

// ActivityPoints 当前生效的默认分值表
func (s *PointService) ActivityPoints() map[model.ActivityType]int {
	policy := s.Policies.Current()
	table := make(map[model.ActivityType]int, len(model.ActivityTypes))
	for _, activity := range model.ActivityTypes {
		table[activity] = policy.DefaultPoints(activity)
	}
	return table
}
