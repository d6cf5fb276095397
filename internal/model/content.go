package model

import (
	"time"

	"gorm.io/gorm"
)

// 课程目录与用户表由内容管理服务维护，本服务只读

// CatalogModel 外部维护表的公共列，软删除的记录不参与任何查询
type CatalogModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Course struct {
	CatalogModel
	Title     string   `gorm:"size:255;not null" json:"title"`
	Language  string   `gorm:"size:10;index" json:"language"`
	Published bool     `gorm:"default:false;index" json:"published"`
	Lessons   []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type Lesson struct {
	CatalogModel
	CourseID  uint    `gorm:"index;not null" json:"courseId"`
	Title     string  `gorm:"size:255;not null" json:"title"`
	Order     int     `gorm:"default:0" json:"order"`
	Published bool    `gorm:"default:false" json:"published"`
	Reward    int     `gorm:"default:0" json:"reward"`
	Topics    []Topic `gorm:"foreignKey:LessonID" json:"topics,omitempty"`
	Quizzes   []Quiz  `gorm:"foreignKey:LessonID" json:"quizzes,omitempty"`
	Games     []Game  `gorm:"foreignKey:LessonID" json:"games,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type Topic struct {
	CatalogModel
	LessonID  uint   `gorm:"index;not null" json:"lessonId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Published bool   `gorm:"default:false" json:"published"`
	Points    int    `gorm:"default:0" json:"points"`
}

func (Topic) TableName() string {
	return "topics"
}

type Quiz struct {
	CatalogModel
	LessonID  uint   `gorm:"index;not null" json:"lessonId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Published bool   `gorm:"default:false" json:"published"`
	Points    int    `gorm:"default:0" json:"points"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Game struct {
	CatalogModel
	LessonID  uint   `gorm:"index;not null" json:"lessonId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Published bool   `gorm:"default:false" json:"published"`
	Reward    int    `gorm:"default:0" json:"reward"`
}

func (Game) TableName() string {
	return "games"
}
