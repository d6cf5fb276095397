package service

import (
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"sync/atomic"
	"time"
)

// PointPolicy 某一时刻生效的积分策略，加载后只读
type PointPolicy struct {
	ActivityPoints    map[model.ActivityType]int
	DuplicatePolicy   string
	DuplicateCooldown time.Duration
	LevelStep         int
	ActiveWindow      time.Duration
	Location          *time.Location
	BatchSize         int
}

func NewPointPolicy(cfg config.GamificationConfig) (*PointPolicy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	points := make(map[model.ActivityType]int, len(cfg.ActivityPoints))
	for activity, value := range cfg.ActivityPoints {
		points[model.ActivityType(activity)] = value
	}

	return &PointPolicy{
		ActivityPoints:    points,
		DuplicatePolicy:   cfg.DuplicatePolicy,
		DuplicateCooldown: cfg.DuplicateCooldown,
		LevelStep:         cfg.LevelStep,
		ActiveWindow:      cfg.ActiveWindow,
		Location:          loc,
		BatchSize:         cfg.BatchSize,
	}, nil
}

// DefaultPoints 活动的统一默认分值；未配置的已知活动记 0 分
func (p *PointPolicy) DefaultPoints(activity model.ActivityType) int {
	return clampPoints(p.ActivityPoints[activity])
}

// Level 等级 = floor(总积分 / 步长)
func (p *PointPolicy) Level(totalPoints int) (level int, nextLevelPoints int) {
	if totalPoints < 0 {
		totalPoints = 0
	}
	level = totalPoints / p.LevelStep
	return level, (level + 1) * p.LevelStep
}

func clampPoints(points int) int {
	if points < 0 {
		return 0
	}
	return points
}

// PolicyStore 配置热更新时整体替换策略
type PolicyStore struct {
	current atomic.Pointer[PointPolicy]
}

func NewPolicyStore(policy *PointPolicy) *PolicyStore {
	s := &PolicyStore{}
	s.current.Store(policy)
	return s
}

func (s *PolicyStore) Current() *PointPolicy {
	return s.current.Load()
}

// Reload 校验失败时保留旧策略
func (s *PolicyStore) Reload(cfg config.GamificationConfig) error {
	policy, err := NewPointPolicy(cfg)
	if err != nil {
		return err
	}
	s.current.Store(policy)
	return nil
}
