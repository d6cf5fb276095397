package repository

import (
	"context"
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

// PointAwardRepository 积分流水只追加：不提供更新与删除
type PointAwardRepository struct {
	DB *gorm.DB
}

func NewPointAwardRepository(db *gorm.DB) *PointAwardRepository {
	return &PointAwardRepository{DB: db}
}

func (r *PointAwardRepository) Create(ctx context.Context, award *model.PointAward) error {
	return r.DB.WithContext(ctx).Create(award).Error
}

// ExistsForReference 是否已有同一学习者、同一活动、同一内容的流水
func (r *PointAwardRepository) ExistsForReference(ctx context.Context, learnerID uint, activity model.ActivityType, refType model.ReferenceType, refID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.PointAward{}).
		Where("learner_id = ? AND activity_type = ? AND reference_type = ? AND reference_id = ?", learnerID, activity, refType, refID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByReferences 查询学习者关联到一组内容的流水，ID 列表为空时直接返回空结果
func (r *PointAwardRepository) FindByReferences(ctx context.Context, learnerID uint, refType model.ReferenceType, refIDs []uint) ([]model.PointAward, error) {
	awards := []model.PointAward{}
	if len(refIDs) == 0 {
		return awards, nil
	}
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND reference_type = ? AND reference_id IN ?", learnerID, refType, refIDs).
		Order("created_at ASC").
		Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

// StreamByLearner 分批读取学习者的全部流水，避免一次性加载
func (r *PointAwardRepository) StreamByLearner(ctx context.Context, learnerID uint, batchSize int, fn func([]model.PointAward) error) error {
	var batch []model.PointAward
	return r.DB.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
