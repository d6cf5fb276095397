package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityCompleteQuiz     ActivityType = "complete_quiz"
	ActivityPlayGame         ActivityType = "play_game"
	ActivityStudyTopic       ActivityType = "study_topic"
	ActivityStudyVocabulary  ActivityType = "study_vocabulary"
	ActivityCompleteLesson   ActivityType = "complete_lesson"
	ActivityPracticeSpeaking ActivityType = "practice_speaking"
)

// ActivityTypes 已知活动类型；新增类型只需追加，旧流水不受影响
var ActivityTypes = []ActivityType{
	ActivityCompleteQuiz,
	ActivityPlayGame,
	ActivityStudyTopic,
	ActivityStudyVocabulary,
	ActivityCompleteLesson,
	ActivityPracticeSpeaking,
}

func (a ActivityType) Valid() bool {
	for _, t := range ActivityTypes {
		if a == t {
			return true
		}
	}
	return false
}

// QualifyingReference 该活动视为“完成”的内容类型，没有则返回 false
func (a ActivityType) QualifyingReference() (ReferenceType, bool) {
	switch a {
	case ActivityCompleteQuiz:
		return RefQuiz, true
	case ActivityPlayGame:
		return RefGame, true
	case ActivityStudyTopic, ActivityStudyVocabulary:
		return RefTopic, true
	case ActivityCompleteLesson:
		return RefLesson, true
	}
	return "", false
}

type ReferenceType string

const (
	RefCourse ReferenceType = "course"
	RefLesson ReferenceType = "lesson"
	RefTopic  ReferenceType = "topic"
	RefQuiz   ReferenceType = "quiz"
	RefGame   ReferenceType = "game"
)

func (r ReferenceType) Valid() bool {
	switch r {
	case RefCourse, RefLesson, RefTopic, RefQuiz, RefGame:
		return true
	}
	return false
}

// PointAward 积分流水，写入后不可修改
// swagger:model PointAward
type PointAward struct {
	ID            string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	LearnerID     uint              `gorm:"index:idx_learner_created,priority:1;not null" json:"learnerId"`
	ActivityType  ActivityType      `gorm:"size:50;not null" json:"activityType"`
	ReferenceID   *uint             `gorm:"index:idx_reference,priority:2" json:"referenceId,omitempty"`
	ReferenceType *ReferenceType    `gorm:"size:20;index:idx_reference,priority:1" json:"referenceType,omitempty"`
	Points        int               `gorm:"not null;default:0" json:"points"`
	Language      string            `gorm:"size:10;index" json:"language,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"index:idx_learner_created,priority:2" json:"createdAt"`
}

func (PointAward) TableName() string {
	return "point_awards"
}

// NewAwardID 流水主键，写入前由调用方或 BeforeCreate 生成
func NewAwardID() string {
	return uuid.New().String()
}

func (p *PointAward) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = NewAwardID()
	}
	return
}

// HasReference 流水是否关联到具体内容
func (p *PointAward) HasReference() bool {
	return p.ReferenceID != nil && p.ReferenceType != nil
}
