package service

import (
	"context"
	"testing"
	"time"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 每个测试独立的内存库，命名DSN避免连接池各自打开空库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-key-0123456789abcdef01",
			ExpireTime: 24 * time.Hour,
			CookieName: "token",
		},
		Quiz: config.QuizConfig{
			CodeLength:          6,
			PlayCacheTTLMinutes: 5,
		},
		Session: config.SessionConfig{
			TTLHours:             2,
			MonitorWindowMinutes: 10,
		},
	}
}

func newQuizService(db *gorm.DB, cfg *config.Config) *QuizService {
	return NewQuizService(repository.NewQuizRepository(db), nil, cfg)
}

func newSessionService(db *gorm.DB, cfg *config.Config) *QuizSessionService {
	return NewQuizSessionService(
		repository.NewQuizSessionRepository(db),
		repository.NewQuizRepository(db),
		repository.NewQuizSubmissionRepository(db),
		cfg,
	)
}

func newSubmissionService(db *gorm.DB, cfg *config.Config) *QuizSubmissionService {
	return NewQuizSubmissionService(
		repository.NewQuizSubmissionRepository(db),
		repository.NewQuizRepository(db),
		cfg,
	)
}

func threeQuestions() []QuestionInput {
	return []QuestionInput{
		{
			Type:          model.MultipleChoice,
			Text:          "What is the capital of France?",
			Options:       []string{"Paris", "London", "Berlin", "Madrid"},
			CorrectAnswer: "Paris",
		},
		{
			Type:          model.TrueFalse,
			Text:          "The sky is blue.",
			Options:       []string{"True", "False"},
			CorrectAnswer: "True",
		},
		{
			Type:          model.ShortAnswer,
			Text:          "Name a primary color.",
			CorrectAnswer: "red",
		},
	}
}

// seedActiveQuiz 建好并激活一份三题测验
func seedActiveQuiz(t *testing.T, svc *QuizService, ownerID uint) *model.Quiz {
	t.Helper()
	quiz, err := svc.CreateQuiz(ownerID, CreateQuizInput{
		Title:     "Geography Basics",
		TimeLimit: 15,
		Questions: threeQuestions(),
	})
	require.NoError(t, err)

	activated, err := svc.Activate(context.Background(), ownerID, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, model.QuizActive, activated.Status)

	// 重新读取，带上题目ID
	fresh, err := svc.QuizRepo.FindByID(quiz.ID)
	require.NoError(t, err)
	return fresh
}
