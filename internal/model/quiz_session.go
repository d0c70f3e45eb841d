package model

import (
	"encoding/json"
	"time"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// QuizSession 一次进行中的作答，学生名/邮箱与测验码为冗余快照，避免监控端反查
// swagger:model QuizSession
type QuizSession struct {
	UUIDBase
	QuizID          string          `gorm:"index;type:varchar(36);not null" json:"quizId"`
	QuizCode        string          `gorm:"size:10;index;not null" json:"quizCode"`
	StudentID       uint            `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	StudentName     string          `gorm:"size:100;not null" json:"studentName"`
	StudentEmail    string          `gorm:"size:100;not null" json:"studentEmail"`
	Status          SessionStatus   `gorm:"size:20;default:'active';index" json:"status"`
	CurrentQuestion int             `gorm:"default:0" json:"currentQuestion"`
	TotalQuestions  int             `gorm:"not null" json:"totalQuestions"` // 加入时的题目数快照
	Progress        int             `gorm:"default:0" json:"progress"`      // 百分比
	Answers         json.RawMessage `gorm:"type:json" json:"answers,omitempty"`
	StartTime       time.Time       `gorm:"index" json:"startTime"`
	LastActivity    time.Time       `json:"lastActivity"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	Score           *float64        `json:"score,omitempty"`     // 客户端上报值，权威得分在 QuizSubmission
	TimeSpent       *int            `json:"timeSpent,omitempty"` // seconds
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// AnswerMap 解码 question id -> answer
func (s *QuizSession) AnswerMap() map[string]string {
	m := map[string]string{}
	if len(s.Answers) > 0 {
		_ = json.Unmarshal(s.Answers, &m)
	}
	return m
}
