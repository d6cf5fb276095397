package service

import (
	"context"
	"testing"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPointService(policies *PolicyStore, guard AwardGuard) (*PointService, *memLedger, *fakeContent) {
	ledger := newMemLedger()
	content := &fakeContent{values: map[contentKeyed]int{
		{model.RefQuiz, 42}:   15,
		{model.RefQuiz, 43}:   0,
		{model.RefGame, 7}:    8,
		{model.RefTopic, 3}:   0,
		{model.RefTopic, 4}:   -3,
		{model.RefLesson, 11}: 25,
	}}
	return NewPointService(ledger, content, policies, guard), ledger, content
}

func TestPointService_AwardPoints_QuizTwice(t *testing.T) {
	svc, ledger, _ := newTestPointService(testPolicyStore(), nil)
	ctx := context.Background()

	req := AwardRequest{
		LearnerID:     1,
		ActivityType:  model.ActivityCompleteQuiz,
		ReferenceID:   uintPtr(42),
		ReferenceType: refTypePtr(model.RefQuiz),
		Language:      "ES",
	}

	first, err := svc.AwardPoints(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 15, first.PointsGranted)
	assert.NotEmpty(t, first.AwardID)

	second, err := svc.AwardPoints(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 15, second.PointsGranted)
	assert.NotEqual(t, first.AwardID, second.AwardID)

	require.Equal(t, 2, ledger.count())
	total := 0
	for _, row := range ledger.rows {
		total += row.Points
		assert.Equal(t, "es", row.Language)
		assert.Equal(t, uint(1), row.LearnerID)
	}
	assert.Equal(t, 30, total)
}

func TestPointService_AwardPoints_ResolvesPoints(t *testing.T) {
	tests := []struct {
		name    string
		req     AwardRequest
		want    int
		lookups int
	}{
		{
			name: "no reference uses default",
			req:  AwardRequest{LearnerID: 1, ActivityType: model.ActivityPracticeSpeaking},
			want: 4,
		},
		{
			name:    "game reward overrides default",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityPlayGame, ReferenceID: uintPtr(7), ReferenceType: refTypePtr(model.RefGame)},
			want:    8,
			lookups: 1,
		},
		{
			name:    "zero valued quiz falls back to default",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceID: uintPtr(43), ReferenceType: refTypePtr(model.RefQuiz)},
			want:    10,
			lookups: 1,
		},
		{
			name:    "vocabulary on topic uses topic lookup",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityStudyVocabulary, ReferenceID: uintPtr(3), ReferenceType: refTypePtr(model.RefTopic)},
			want:    2,
			lookups: 1,
		},
		{
			name:    "negative topic value falls back to default",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityStudyTopic, ReferenceID: uintPtr(4), ReferenceType: refTypePtr(model.RefTopic)},
			want:    3,
			lookups: 1,
		},
		{
			name:    "lesson reward",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteLesson, ReferenceID: uintPtr(11), ReferenceType: refTypePtr(model.RefLesson)},
			want:    25,
			lookups: 1,
		},
		{
			name: "mismatched reference keeps default without lookup",
			req:  AwardRequest{LearnerID: 1, ActivityType: model.ActivityPracticeSpeaking, ReferenceID: uintPtr(11), ReferenceType: refTypePtr(model.RefLesson)},
			want: 4,
		},
		{
			name: "course reference keeps default",
			req:  AwardRequest{LearnerID: 1, ActivityType: model.ActivityStudyTopic, ReferenceID: uintPtr(1), ReferenceType: refTypePtr(model.RefCourse)},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger, content := newTestPointService(testPolicyStore(), nil)
			got, err := svc.AwardPoints(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.PointsGranted)
			assert.Equal(t, tt.lookups, content.calls)
			assert.Equal(t, 1, ledger.count())
		})
	}
}

func TestPointService_AwardPoints_NAwardsNRows(t *testing.T) {
	svc, ledger, _ := newTestPointService(testPolicyStore(), nil)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.AwardPoints(ctx, AwardRequest{LearnerID: 9, ActivityType: model.ActivityStudyTopic})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, ledger.count())
}

func TestPointService_AwardPoints_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		req     AwardRequest
		wantErr error
		reason  string
	}{
		{
			name:    "unknown activity",
			req:     AwardRequest{LearnerID: 1, ActivityType: "dance"},
			wantErr: util.ErrInvalidActivity,
			reason:  "invalid_activity",
		},
		{
			name:    "empty activity",
			req:     AwardRequest{LearnerID: 1},
			wantErr: util.ErrInvalidActivity,
			reason:  "invalid_activity",
		},
		{
			name:    "reference id without type",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceID: uintPtr(42)},
			wantErr: util.ErrInvalidReference,
			reason:  "invalid_reference",
		},
		{
			name:    "reference type without id",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceType: refTypePtr(model.RefQuiz)},
			wantErr: util.ErrInvalidReference,
			reason:  "invalid_reference",
		},
		{
			name:    "unknown reference type",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceID: uintPtr(42), ReferenceType: refTypePtr("podcast")},
			wantErr: util.ErrInvalidReference,
			reason:  "invalid_reference",
		},
		{
			name:    "missing quiz",
			req:     AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceID: uintPtr(404), ReferenceType: refTypePtr(model.RefQuiz)},
			wantErr: util.ErrInvalidReference,
			reason:  "invalid_reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledger, _ := newTestPointService(testPolicyStore(), nil)
			before := testutil.ToFloat64(monitoring.AwardFailures.WithLabelValues(tt.reason))

			got, err := svc.AwardPoints(context.Background(), tt.req)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, ledger.count())
			assert.Equal(t, before+1, testutil.ToFloat64(monitoring.AwardFailures.WithLabelValues(tt.reason)))
		})
	}
}

func TestPointService_AwardPoints_PersistenceFailure(t *testing.T) {
	t.Run("insert fails", func(t *testing.T) {
		svc, ledger, _ := newTestPointService(testPolicyStore(), nil)
		ledger.createErr = errStoreDown

		_, err := svc.AwardPoints(context.Background(), AwardRequest{LearnerID: 1, ActivityType: model.ActivityPlayGame})
		assert.ErrorIs(t, err, util.ErrPersistenceFailure)
		assert.Equal(t, 0, ledger.count())
	})

	t.Run("content lookup fails", func(t *testing.T) {
		svc, ledger, content := newTestPointService(testPolicyStore(), nil)
		content.err = errStoreDown

		_, err := svc.AwardPoints(context.Background(), AwardRequest{
			LearnerID: 1, ActivityType: model.ActivityPlayGame, ReferenceID: uintPtr(7), ReferenceType: refTypePtr(model.RefGame),
		})
		assert.ErrorIs(t, err, util.ErrPersistenceFailure)
		assert.Equal(t, 0, ledger.count())
	})
}

func TestPointService_AwardPoints_OncePerReference(t *testing.T) {
	policies := testPolicyStore(func(c *config.GamificationConfig) {
		c.DuplicatePolicy = config.DuplicateOncePerReference
	})
	svc, ledger, _ := newTestPointService(policies, nil)
	ctx := context.Background()

	quiz := AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceID: uintPtr(42), ReferenceType: refTypePtr(model.RefQuiz)}
	_, err := svc.AwardPoints(ctx, quiz)
	require.NoError(t, err)

	_, err = svc.AwardPoints(ctx, quiz)
	assert.ErrorIs(t, err, util.ErrDuplicateAward)

	other := quiz
	other.LearnerID = 2
	_, err = svc.AwardPoints(ctx, other)
	assert.NoError(t, err)

	// 无关联内容的活动不受限制
	for i := 0; i < 2; i++ {
		_, err = svc.AwardPoints(ctx, AwardRequest{LearnerID: 1, ActivityType: model.ActivityPracticeSpeaking})
		require.NoError(t, err)
	}
	assert.Equal(t, 4, ledger.count())
}

func TestPointService_AwardPoints_Cooldown(t *testing.T) {
	policies := testPolicyStore(func(c *config.GamificationConfig) {
		c.DuplicatePolicy = config.DuplicateCooldown
	})

	t.Run("blocks repeat within window", func(t *testing.T) {
		guard := newMemGuard()
		svc, ledger, _ := newTestPointService(policies, guard)
		req := AwardRequest{LearnerID: 1, ActivityType: model.ActivityPlayGame, ReferenceID: uintPtr(7), ReferenceType: refTypePtr(model.RefGame)}

		_, err := svc.AwardPoints(context.Background(), req)
		require.NoError(t, err)
		_, err = svc.AwardPoints(context.Background(), req)
		assert.ErrorIs(t, err, util.ErrDuplicateAward)
		assert.Equal(t, 1, ledger.count())
	})

	t.Run("releases key when insert fails", func(t *testing.T) {
		guard := newMemGuard()
		svc, ledger, _ := newTestPointService(policies, guard)
		req := AwardRequest{LearnerID: 1, ActivityType: model.ActivityPracticeSpeaking}

		ledger.createErr = errStoreDown
		_, err := svc.AwardPoints(context.Background(), req)
		assert.ErrorIs(t, err, util.ErrPersistenceFailure)
		assert.Empty(t, guard.held)

		ledger.createErr = nil
		_, err = svc.AwardPoints(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("guard error is a persistence failure", func(t *testing.T) {
		guard := newMemGuard()
		guard.err = errStoreDown
		svc, ledger, _ := newTestPointService(policies, guard)

		_, err := svc.AwardPoints(context.Background(), AwardRequest{LearnerID: 1, ActivityType: model.ActivityPracticeSpeaking})
		assert.ErrorIs(t, err, util.ErrPersistenceFailure)
		assert.Equal(t, 0, ledger.count())
	})

	t.Run("missing guard allows award", func(t *testing.T) {
		svc, ledger, _ := newTestPointService(policies, nil)
		req := AwardRequest{LearnerID: 1, ActivityType: model.ActivityPracticeSpeaking}
		for i := 0; i < 2; i++ {
			_, err := svc.AwardPoints(context.Background(), req)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, ledger.count())
	})
}

func TestPointService_AwardPoints_Metadata(t *testing.T) {
	svc, ledger, _ := newTestPointService(testPolicyStore(), nil)
	_, err := svc.AwardPoints(context.Background(), AwardRequest{
		LearnerID:    1,
		ActivityType: model.ActivityPracticeSpeaking,
		Metadata:     map[string]interface{}{"score": 0.82},
	})
	require.NoError(t, err)
	require.Equal(t, 1, ledger.count())
	assert.Equal(t, 0.82, ledger.rows[0].Metadata["score"])
}

func TestPointService_ListAwards(t *testing.T) {
	svc, _, _ := newTestPointService(testPolicyStore(), nil)
	ctx := context.Background()
	quiz := AwardRequest{LearnerID: 1, ActivityType: model.ActivityCompleteQuiz, ReferenceID: uintPtr(42), ReferenceType: refTypePtr(model.RefQuiz)}
	_, err := svc.AwardPoints(ctx, quiz)
	require.NoError(t, err)

	got, err := svc.ListAwards(ctx, 1, model.RefQuiz, []uint{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.ListAwards(ctx, 1, model.RefQuiz, []uint{42})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ListAwards(ctx, 2, model.RefQuiz, []uint{42})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.ListAwards(ctx, 1, "podcast", []uint{42})
	assert.ErrorIs(t, err, util.ErrInvalidReference)
}

func TestPointService_ActivityPoints(t *testing.T) {
	policies := testPolicyStore(func(c *config.GamificationConfig) {
		delete(c.ActivityPoints, "practice_speaking")
	})
	svc, _, _ := newTestPointService(policies, nil)

	table := svc.ActivityPoints()
	assert.Len(t, table, len(model.ActivityTypes))
	assert.Equal(t, 10, table[model.ActivityCompleteQuiz])
	assert.Equal(t, 0, table[model.ActivityPracticeSpeaking])
}
