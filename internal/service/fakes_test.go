package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

var errStoreDown = errors.New("store down")

// memLedger 内存流水，同时实现 AwardStore 与 LedgerReader
type memLedger struct {
	mu        sync.Mutex
	rows      []model.PointAward
	createErr error
	readErr   error
	now       func() time.Time
}

func newMemLedger() *memLedger {
	return &memLedger{now: time.Now}
}

func (m *memLedger) Create(_ context.Context, award *model.PointAward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if award.ID == "" {
		award.ID = model.NewAwardID()
	}
	if award.CreatedAt.IsZero() {
		award.CreatedAt = m.now()
	}
	m.rows = append(m.rows, *award)
	return nil
}

func (m *memLedger) ExistsForReference(_ context.Context, learnerID uint, activity model.ActivityType, refType model.ReferenceType, refID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return false, m.readErr
	}
	for _, a := range m.rows {
		if a.LearnerID == learnerID && a.ActivityType == activity && a.HasReference() &&
			*a.ReferenceType == refType && *a.ReferenceID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) FindByReferences(_ context.Context, learnerID uint, refType model.ReferenceType, refIDs []uint) ([]model.PointAward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	wanted := map[uint]bool{}
	for _, id := range refIDs {
		wanted[id] = true
	}
	out := []model.PointAward{}
	for _, a := range m.rows {
		if a.LearnerID == learnerID && a.HasReference() && *a.ReferenceType == refType && wanted[*a.ReferenceID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memLedger) StreamByLearner(_ context.Context, learnerID uint, batchSize int, fn func([]model.PointAward) error) error {
	m.mu.Lock()
	if m.readErr != nil {
		m.mu.Unlock()
		return m.readErr
	}
	var mine []model.PointAward
	for _, a := range m.rows {
		if a.LearnerID == learnerID {
			mine = append(mine, a)
		}
	}
	m.mu.Unlock()

	for start := 0; start < len(mine); start += batchSize {
		end := start + batchSize
		if end > len(mine) {
			end = len(mine)
		}
		if err := fn(mine[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// seed 直接写入一条指定时间的流水
func (m *memLedger) seed(learnerID uint, activity model.ActivityType, points int, language string, at time.Time, refType model.ReferenceType, refID uint) {
	award := model.PointAward{
		ID:           model.NewAwardID(),
		LearnerID:    learnerID,
		ActivityType: activity,
		Points:       points,
		Language:     language,
		CreatedAt:    at,
	}
	if refType != "" {
		id, rt := refID, refType
		award.ReferenceID, award.ReferenceType = &id, &rt
	}
	m.mu.Lock()
	m.rows = append(m.rows, award)
	m.mu.Unlock()
}

type contentKeyed struct {
	refType model.ReferenceType
	id      uint
}

type fakeContent struct {
	values map[contentKeyed]int
	err    error
	calls  int
}

func (f *fakeContent) PointValue(_ context.Context, refType model.ReferenceType, refID uint) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	v, ok := f.values[contentKeyed{refType, refID}]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return v, nil
}

type fakeLearners struct {
	users map[uint]*model.User
	err   error
	calls int
}

func (f *fakeLearners) FindByID(_ context.Context, id uint) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeHierarchy struct {
	courses []model.Course
	err     error
}

func (f *fakeHierarchy) LoadPublishedHierarchy(context.Context) ([]model.Course, error) {
	return f.courses, f.err
}

// memGuard 忽略 TTL 的内存冷却锁
type memGuard struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMemGuard() *memGuard {
	return &memGuard{held: map[string]bool{}}
}

func (g *memGuard) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

func testGamificationConfig() config.GamificationConfig {
	return config.GamificationConfig{
		ActivityPoints: map[string]int{
			"complete_quiz":     10,
			"play_game":         5,
			"study_topic":       3,
			"study_vocabulary":  2,
			"complete_lesson":   20,
			"practice_speaking": 4,
		},
		DuplicatePolicy:   config.DuplicateAllow,
		DuplicateCooldown: 30 * time.Second,
		LevelStep:         100,
		ActiveWindow:      72 * time.Hour,
		Timezone:          "UTC",
		BatchSize:         2,
	}
}

func testPolicyStore(mutate ...func(*config.GamificationConfig)) *PolicyStore {
	cfg := testGamificationConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	policy, err := NewPointPolicy(cfg)
	if err != nil {
		panic(err)
	}
	return NewPolicyStore(policy)
}

func uintPtr(v uint) *uint { return &v }

func refTypePtr(r model.ReferenceType) *model.ReferenceType { return &r }
