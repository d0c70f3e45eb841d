package repository

import (
	"quizhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizSubmissionRepository struct {
	DB *gorm.DB
}

func NewQuizSubmissionRepository(db *gorm.DB) *QuizSubmissionRepository {
	return &QuizSubmissionRepository{DB: db}
}

func (r *QuizSubmissionRepository) Create(submission *model.QuizSubmission) error {
	return r.DB.Create(submission).Error
}

func (r *QuizSubmissionRepository) FindByID(id string) (*model.QuizSubmission, error) {
	var submission model.QuizSubmission
	err := r.DB.First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *QuizSubmissionRepository) ListByQuiz(quizID string) ([]model.QuizSubmission, error) {
	var submissions []model.QuizSubmission
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// ListByQuizSince 监控快照：近期完成的提交
func (r *QuizSubmissionRepository) ListByQuizSince(quizID string, since time.Time) ([]model.QuizSubmission, error) {
	var submissions []model.QuizSubmission
	err := r.DB.Where("quiz_id = ? AND submitted_at >= ?", quizID, since).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *QuizSubmissionRepository) ListByStudent(studentID uint) ([]model.QuizSubmission, error) {
	var submissions []model.QuizSubmission
	err := r.DB.Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}
