package model

import (
	"encoding/json"
	"time"
)

// QuizSubmission 已完成作答的持久记录，写入后不再变更；得分为服务端计算
// swagger:model QuizSubmission
type QuizSubmission struct {
	UUIDBase
	QuizID         string          `gorm:"index;type:varchar(36);not null" json:"quizId"`
	QuizCode       string          `gorm:"size:10;index;not null" json:"quizCode"`
	StudentID      uint            `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	StudentName    string          `gorm:"size:100;not null" json:"studentName"`
	StudentEmail   string          `gorm:"size:100;not null" json:"studentEmail"`
	Answers        json.RawMessage `gorm:"type:json" json:"answers"`
	Score          float64         `gorm:"not null" json:"score"` // 0-100
	TotalQuestions int             `gorm:"not null" json:"totalQuestions"`
	TimeSpent      int             `gorm:"default:0" json:"timeSpent"` // seconds
	SubmittedAt    time.Time       `gorm:"index" json:"submittedAt"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

// AnswerMap 解码 question id -> answer
func (s *QuizSubmission) AnswerMap() map[string]string {
	m := map[string]string{}
	if len(s.Answers) > 0 {
		_ = json.Unmarshal(s.Answers, &m)
	}
	return m
}
