package model

import "time"

// 以下结构均为读时计算的视图，不落库

// ProgressSnapshot 学习者的积分与完成度快照
// swagger:model ProgressSnapshot
type ProgressSnapshot struct {
	LearnerID        uint             `json:"learnerId"`
	Language         string           `json:"language,omitempty"`
	TotalPoints      int              `json:"totalPoints"`
	PointsByLanguage map[string]int   `json:"pointsByLanguage"`
	AwardCount       int              `json:"awardCount"`
	Courses          []CourseProgress `json:"courses"`
	Level            int              `json:"level"`
	NextLevelPoints  int              `json:"nextLevelPoints"`
	CurrentStreak    int              `json:"currentStreak"`
	LongestStreak    int              `json:"longestStreak"`
	LastActivityAt   *time.Time       `json:"lastActivityAt,omitempty"`
	RecentlyActive   bool             `json:"recentlyActive"`
}

type CourseProgress struct {
	CourseID         uint             `json:"courseId"`
	Title            string           `json:"title"`
	Language         string           `json:"language,omitempty"`
	CompletedLeaves  int              `json:"completedLeaves"`
	TotalLeaves      int              `json:"totalLeaves"`
	CompletionRatio  float64          `json:"completionRatio"`
	CompletedLessons int              `json:"completedLessons"`
	TotalLessons     int              `json:"totalLessons"`
	Lessons          []LessonProgress `json:"lessons"`
}

type LessonProgress struct {
	LessonID        uint   `json:"lessonId"`
	Title           string `json:"title"`
	CompletedLeaves int    `json:"completedLeaves"`
	TotalLeaves     int    `json:"totalLeaves"`
	Completed       bool   `json:"completed"`
}
