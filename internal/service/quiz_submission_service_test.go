package service

import (
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitScoresOnServer(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSubmissionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	// 三题答对两道
	submission, err := svc.Submit(10, "Stu", "stu@example.com", quiz.Code, map[string]string{
		quiz.Questions[0].ID: "Paris",
		quiz.Questions[1].ID: "False",
		quiz.Questions[2].ID: "red",
	}, 150)
	require.NoError(t, err)

	assert.InDelta(t, 66.666, submission.Score, 0.01)
	assert.Equal(t, 3, submission.TotalQuestions)
	assert.Equal(t, 150, submission.TimeSpent)
	assert.False(t, submission.SubmittedAt.IsZero())

	// 未作答的题按答错计
	zero, err := svc.Submit(11, "Empty", "empty@example.com", quiz.Code, map[string]string{}, 5)
	require.NoError(t, err)
	assert.Zero(t, zero.Score)
}

func TestSubmitCaseSensitivityPolicy(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	answers := map[string]string{quiz.Questions[2].ID: "RED"}

	// 默认大小写敏感
	strict := newSubmissionService(db, cfg)
	submission, err := strict.Submit(10, "Stu", "stu@example.com", quiz.Code, answers, 10)
	require.NoError(t, err)
	assert.Zero(t, submission.Score)

	cfg.Quiz.CaseInsensitiveAnswers = true
	relaxed := newSubmissionService(db, cfg)
	submission, err = relaxed.Submit(10, "Stu", "stu@example.com", quiz.Code, answers, 10)
	require.NoError(t, err)
	assert.InDelta(t, 33.333, submission.Score, 0.01)
}

func TestSubmitGuards(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSubmissionService(db, cfg)

	quiz, err := quizSvc.CreateQuiz(1, CreateQuizInput{Title: "Draft", Questions: threeQuestions()})
	require.NoError(t, err)

	_, err = svc.Submit(10, "Stu", "stu@example.com", quiz.Code, nil, 0)
	assert.ErrorIs(t, err, util.ErrQuizNotActive)

	_, err = svc.Submit(10, "Stu", "stu@example.com", "ZZZZZZ", nil, 0)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestStudentResultOwnershipAndReview(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSubmissionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	submission, err := svc.Submit(10, "Stu", "stu@example.com", quiz.Code, map[string]string{
		quiz.Questions[0].ID: "London",
	}, 60)
	require.NoError(t, err)

	review, err := svc.StudentResult(10, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.Title, review.QuizTitle)
	require.Len(t, review.Questions, 3)
	// 回顾视图带正确答案，供逐题对照
	assert.Equal(t, "Paris", review.Questions[0].CorrectAnswer)
	assert.Equal(t, "London", review.Answers[quiz.Questions[0].ID])

	_, err = svc.StudentResult(99, submission.ID)
	assert.ErrorIs(t, err, util.ErrNotSubmissionOwner)

	_, err = svc.StudentResult(10, "missing")
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
}

func TestListForStudentSurvivesDeletedQuiz(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSubmissionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	_, err := svc.Submit(10, "Stu", "stu@example.com", quiz.Code, map[string]string{
		quiz.Questions[0].ID: "Paris",
	}, 30)
	require.NoError(t, err)

	rows, err := svc.ListForStudent(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, quiz.Title, rows[0].Quiz.Title)

	// 测验删除后提交记录仍可见，仅测验信息降级
	require.NoError(t, db.Delete(&model.Quiz{}, "id = ?", quiz.ID).Error)

	rows, err = svc.ListForStudent(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Quiz Not Found", rows[0].Quiz.Title)
	assert.Equal(t, quiz.Code, rows[0].Quiz.Code)

	other, err := svc.ListForStudent(42)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTeacherResultsStatistics(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSubmissionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	allRight := map[string]string{
		quiz.Questions[0].ID: "Paris",
		quiz.Questions[1].ID: "True",
		quiz.Questions[2].ID: "red",
	}
	_, err := svc.Submit(10, "Ace", "ace@example.com", quiz.Code, allRight, 100)
	require.NoError(t, err)
	_, err = svc.Submit(11, "Half", "half@example.com", quiz.Code, map[string]string{
		quiz.Questions[0].ID: "Paris",
	}, 200)
	require.NoError(t, err)

	results, err := svc.TeacherResults(1, quiz.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, results.Statistics.TotalSubmissions)
	assert.InDelta(t, 100.0, results.Statistics.HighestScore, 0.001)
	assert.InDelta(t, 33.333, results.Statistics.LowestScore, 0.01)
	assert.InDelta(t, 66.666, results.Statistics.AverageScore, 0.01)
	assert.Equal(t, 150, results.Statistics.AverageTimeSpent)
	require.Len(t, results.Results, 2)

	_, err = svc.TeacherResults(2, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotQuizOwner)

	_, err = svc.TeacherResults(1, "no-such-quiz")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}
