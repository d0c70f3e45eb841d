package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create 测验与题目一并写入（gorm关联级联创建）
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` ASC")
	}).First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindByCode(code string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` ASC")
	}).First(&quiz, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *QuizRepository) ListByOwner(ownerID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` ASC")
	}).Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByStatus(status model.QuizStatus) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("status = ?", status).
		Order("updated_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) UpdateStatus(id string, status model.QuizStatus) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *QuizRepository) CountQuestions(quizID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizQuestion{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}
