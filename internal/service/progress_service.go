package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/tracing"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

type LedgerReader interface {
	StreamByLearner(ctx context.Context, learnerID uint, batchSize int, fn func([]model.PointAward) error) error
}

type HierarchyReader interface {
	LoadPublishedHierarchy(ctx context.Context) ([]model.Course, error)
}

type LearnerFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// ProgressService 每次请求都从流水重新汇总，不缓存、不回写
type ProgressService struct {
	Learners  LearnerFinder
	Ledger    LedgerReader
	Hierarchy HierarchyReader
	Policies  *PolicyStore
	Now       func() time.Time
}

func NewProgressService(learners LearnerFinder, ledger LedgerReader, hierarchy HierarchyReader, policies *PolicyStore) *ProgressService {
	return &ProgressService{
		Learners:  learners,
		Ledger:    ledger,
		Hierarchy: hierarchy,
		Policies:  policies,
		Now:       time.Now,
	}
}

type ProgressOptions struct {
	// Language 非空时总积分只统计该语言的流水
	Language string
}

type contentKey struct {
	refType model.ReferenceType
	id      uint
}

// ledgerFold 对流水做一次折叠得到的中间结果
type ledgerFold struct {
	language    string
	total       int
	count       int
	byLanguage  map[string]int
	completed   map[contentKey]bool
	activeDays  map[int64]bool
	lastAwardAt time.Time
	loc         *time.Location
}

func newLedgerFold(language string, loc *time.Location) *ledgerFold {
	return &ledgerFold{
		language:   strings.ToLower(strings.TrimSpace(language)),
		byLanguage: map[string]int{},
		completed:  map[contentKey]bool{},
		activeDays: map[int64]bool{},
		loc:        loc,
	}
}

func (f *ledgerFold) add(award model.PointAward) {
	f.byLanguage[award.Language] += award.Points
	if f.language == "" || award.Language == f.language {
		f.total += award.Points
		f.count++
	}

	if award.HasReference() {
		if qualifying, ok := award.ActivityType.QualifyingReference(); ok && qualifying == *award.ReferenceType {
			f.completed[contentKey{refType: *award.ReferenceType, id: *award.ReferenceID}] = true
		}
	}

	f.activeDays[dayNumber(award.CreatedAt, f.loc)] = true
	if award.CreatedAt.After(f.lastAwardAt) {
		f.lastAwardAt = award.CreatedAt
	}
}

func (f *ledgerFold) isCompleted(refType model.ReferenceType, id uint) bool {
	return f.completed[contentKey{refType: refType, id: id}]
}

// dayNumber 指定时区下的自然日序号
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// GetProgress 汇总学习者的积分、各课程完成度与连续学习天数。
// 权限校验由调用方负责。
func (s *ProgressService) GetProgress(ctx context.Context, learnerID uint, opts ProgressOptions) (*model.ProgressSnapshot, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.GetProgress")
	defer span.End()
	span.SetAttributes(attribute.Int64("learner.id", int64(learnerID)))

	start := time.Now()
	snapshot, err := s.compute(ctx, learnerID, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	monitoring.ProgressDuration.Observe(time.Since(start).Seconds())
	return snapshot, nil
}

func (s *ProgressService) compute(ctx context.Context, learnerID uint, opts ProgressOptions) (*model.ProgressSnapshot, error) {
	if _, err := s.Learners.FindByID(ctx, learnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: #%d", util.ErrLearnerNotFound, learnerID)
		}
		return nil, persistenceError(err)
	}

	policy := s.Policies.Current()
	fold := newLedgerFold(opts.Language, policy.Location)
	err := s.Ledger.StreamByLearner(ctx, learnerID, policy.BatchSize, func(batch []model.PointAward) error {
		for _, award := range batch {
			fold.add(award)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	courses, err := s.Hierarchy.LoadPublishedHierarchy(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	now := s.Now()
	level, nextLevel := policy.Level(fold.total)
	current, longest := streaks(fold.activeDays, dayNumber(now, policy.Location))

	snapshot := &model.ProgressSnapshot{
		LearnerID:        learnerID,
		Language:         fold.language,
		TotalPoints:      fold.total,
		PointsByLanguage: fold.byLanguage,
		AwardCount:       fold.count,
		Courses:          make([]model.CourseProgress, 0, len(courses)),
		Level:            level,
		NextLevelPoints:  nextLevel,
		CurrentStreak:    current,
		LongestStreak:    longest,
	}
	if !fold.lastAwardAt.IsZero() {
		last := fold.lastAwardAt
		snapshot.LastActivityAt = &last
		snapshot.RecentlyActive = now.Sub(last) <= policy.ActiveWindow
	}

	for _, course := range courses {
		snapshot.Courses = append(snapshot.Courses, rollUpCourse(course, fold))
	}
	return snapshot, nil
}

func rollUpCourse(course model.Course, fold *ledgerFold) model.CourseProgress {
	cp := model.CourseProgress{
		CourseID: course.ID,
		Title:    course.Title,
		Language: course.Language,
		Lessons:  make([]model.LessonProgress, 0, len(course.Lessons)),
	}

	for _, lesson := range course.Lessons {
		lp := rollUpLesson(lesson, fold)
		cp.Lessons = append(cp.Lessons, lp)
		cp.TotalLeaves += lp.TotalLeaves
		cp.CompletedLeaves += lp.CompletedLeaves
		cp.TotalLessons++
		if lp.Completed {
			cp.CompletedLessons++
		}
	}

	cp.CompletionRatio = ratio(cp.CompletedLeaves, cp.TotalLeaves)
	return cp
}

func rollUpLesson(lesson model.Lesson, fold *ledgerFold) model.LessonProgress {
	lp := model.LessonProgress{
		LessonID: lesson.ID,
		Title:    lesson.Title,
	}

	count := func(refType model.ReferenceType, id uint) {
		lp.TotalLeaves++
		if fold.isCompleted(refType, id) {
			lp.CompletedLeaves++
		}
	}
	for _, topic := range lesson.Topics {
		count(model.RefTopic, topic.ID)
	}
	for _, quiz := range lesson.Quizzes {
		count(model.RefQuiz, quiz.ID)
	}
	for _, game := range lesson.Games {
		count(model.RefGame, game.ID)
	}

	// 没有叶子节点的课时以 complete_lesson 流水判定
	if lp.TotalLeaves == 0 {
		lp.Completed = fold.isCompleted(model.RefLesson, lesson.ID)
	} else {
		lp.Completed = lp.CompletedLeaves == lp.TotalLeaves
	}
	return lp
}

// ratio 分母为 0 时返回 0
func ratio(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(completed) / float64(total)
	if r > 1 {
		return 1
	}
	return r
}

// streaks 当前连续天数（截止今天或昨天）与历史最长连续天数
func streaks(days map[int64]bool, today int64) (current int, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	sorted := make([]int64, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	run := 0
	for i, d := range sorted {
		if i > 0 && d == sorted[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	cursor := today
	if !days[cursor] {
		cursor--
	}
	for days[cursor] {
		current++
		cursor--
	}
	return current, longest
}
