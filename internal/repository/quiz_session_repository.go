package repository

import (
	"quizhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizSessionRepository struct {
	DB *gorm.DB
}

func NewQuizSessionRepository(db *gorm.DB) *QuizSessionRepository {
	return &QuizSessionRepository{DB: db}
}

func (r *QuizSessionRepository) Create(session *model.QuizSession) error {
	return r.DB.Create(session).Error
}

func (r *QuizSessionRepository) FindByID(id string) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.DB.First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByQuizAndStudent 同一(测验,学生)最多一条active会话
func (r *QuizSessionRepository) FindActiveByQuizAndStudent(quizID string, studentID uint) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.DB.Where("quiz_id = ? AND student_id = ? AND status = ?",
		quizID, studentID, model.SessionActive).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *QuizSessionRepository) Save(session *model.QuizSession) error {
	return r.DB.Save(session).Error
}

// ListActiveSince 监控快照：仍在作答且近期有活动的会话
func (r *QuizSessionRepository) ListActiveSince(quizID string, since time.Time) ([]model.QuizSession, error) {
	var sessions []model.QuizSession
	err := r.DB.Where("quiz_id = ? AND status = ? AND last_activity >= ?",
		quizID, model.SessionActive, since).
		Order("start_time DESC").
		Find(&sessions).Error
	return sessions, err
}

// DeleteStartedBefore 清理早于界限的会话，不区分状态，返回删除条数
func (r *QuizSessionRepository) DeleteStartedBefore(threshold time.Time) (int64, error) {
	result := r.DB.Where("start_time < ?", threshold).Delete(&model.QuizSession{})
	return result.RowsAffected, result.Error
}
