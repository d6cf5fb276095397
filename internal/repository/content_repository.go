package repository

import (
	"context"
	"fmt"
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository 只读访问内容管理服务维护的课程目录
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("published = ?", true).Order("id ASC")
}

// LoadPublishedHierarchy 加载已发布课程 -> 已发布课时 -> 已发布叶子节点
func (r *ContentRepository) LoadPublishedHierarchy(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("published = ?", true).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Where("published = ?", true).
				Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
				Order("id ASC")
		}).
		Preload("Lessons.Topics", published).
		Preload("Lessons.Quizzes", published).
		Preload("Lessons.Games", published).
		Order("id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// PointValue 返回已发布内容自身配置的分值（测验/知识点为 points，游戏/课时为 reward）
// 记录不存在或未发布时返回 gorm.ErrRecordNotFound
func (r *ContentRepository) PointValue(ctx context.Context, refType model.ReferenceType, refID uint) (int, error) {
	db := r.DB.WithContext(ctx).Where("published = ?", true)
	switch refType {
	case model.RefQuiz:
		var quiz model.Quiz
		if err := db.Select("id", "points").First(&quiz, refID).Error; err != nil {
			return 0, err
		}
		return quiz.Points, nil
	case model.RefTopic:
		var topic model.Topic
		if err := db.Select("id", "points").First(&topic, refID).Error; err != nil {
			return 0, err
		}
		return topic.Points, nil
	case model.RefGame:
		var game model.Game
		if err := db.Select("id", "reward").First(&game, refID).Error; err != nil {
			return 0, err
		}
		return game.Reward, nil
	case model.RefLesson:
		var lesson model.Lesson
		if err := db.Select("id", "reward").First(&lesson, refID).Error; err != nil {
			return 0, err
		}
		return lesson.Reward, nil
	}
	return 0, fmt.Errorf("reference type %q carries no point value", refType)
}
