package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeFormat = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateQuizStartsAsDraftWithCode(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())

	quiz, err := svc.CreateQuiz(1, CreateQuizInput{
		Title:     "Geography Basics",
		Questions: threeQuestions(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.QuizDraft, quiz.Status)
	assert.Regexp(t, codeFormat, quiz.Code)
	assert.Equal(t, 10, quiz.TimeLimit) // 未指定时用默认时长

	fresh, err := svc.QuizRepo.FindByID(quiz.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Questions, 3)
	// 题目按创建顺序返回
	assert.Equal(t, "What is the capital of France?", fresh.Questions[0].Text)
	assert.Equal(t, []string{"Paris", "London", "Berlin", "Madrid"}, fresh.Questions[0].OptionList())
	assert.Empty(t, fresh.Questions[2].OptionList())
}

func TestCreateQuizValidation(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())

	_, err := svc.CreateQuiz(1, CreateQuizInput{Title: "  ", Questions: threeQuestions()})
	assert.ErrorIs(t, err, util.ErrTitleRequired)

	_, err = svc.CreateQuiz(1, CreateQuizInput{Title: "Empty"})
	assert.ErrorIs(t, err, util.ErrQuestionlessQuiz)

	_, err = svc.CreateQuiz(1, CreateQuizInput{
		Title: "Bad type",
		Questions: []QuestionInput{
			{Type: "essay", Text: "Discuss.", CorrectAnswer: "n/a"},
		},
	})
	assert.ErrorIs(t, err, util.ErrInvalidQuestion)

	_, err = svc.CreateQuiz(1, CreateQuizInput{
		Title: "Answer missing from options",
		Questions: []QuestionInput{
			{
				Type:          model.MultipleChoice,
				Text:          "Pick one.",
				Options:       []string{"A", "B"},
				CorrectAnswer: "C",
			},
		},
	})
	assert.ErrorIs(t, err, util.ErrAnswerNotInOptions)
}

func TestLifecycleTransitions(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())
	ctx := context.Background()

	quiz, err := svc.CreateQuiz(1, CreateQuizInput{Title: "Lifecycle", Questions: threeQuestions()})
	require.NoError(t, err)

	// 非创建者不可操作，且状态保持不变
	_, err = svc.Activate(ctx, 2, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotQuizOwner)
	fresh, _ := svc.QuizRepo.FindByID(quiz.ID)
	assert.Equal(t, model.QuizDraft, fresh.Status)

	activated, err := svc.Activate(ctx, 1, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuizActive, activated.Status)

	// 重复开始被拒绝
	_, err = svc.Activate(ctx, 1, quiz.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	ended, err := svc.End(ctx, 1, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuizCompleted, ended.Status)

	_, err = svc.End(ctx, 1, quiz.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	// 已结束的测验不能再开始
	_, err = svc.Activate(ctx, 1, quiz.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	_, err = svc.Activate(ctx, 1, "no-such-id")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestGetPlayableByCodeStripsAnswers(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())
	quiz := seedActiveQuiz(t, svc, 1)

	playable, err := svc.GetPlayableByCode(context.Background(), quiz.Code)
	require.NoError(t, err)
	require.Len(t, playable.Questions, 3)
	assert.Equal(t, quiz.Questions[0].ID, playable.Questions[0].ID)
	assert.Equal(t, []string{"Paris", "London", "Berlin", "Madrid"}, playable.Questions[0].Options)

	// 载荷序列化后不包含correctAnswer字段
	raw, err := json.Marshal(playable)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correctAnswer")
}

func TestGetPlayableByCodeStatusGuards(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())
	ctx := context.Background()

	quiz, err := svc.CreateQuiz(1, CreateQuizInput{Title: "Draft only", Questions: threeQuestions()})
	require.NoError(t, err)

	// 草稿不可作答
	_, err = svc.GetPlayableByCode(ctx, quiz.Code)
	assert.ErrorIs(t, err, util.ErrQuizNotActive)

	_, err = svc.GetPlayableByCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)

	// 参与码匹配不区分大小写输入
	_, err = svc.Activate(ctx, 1, quiz.ID)
	require.NoError(t, err)
	playable, err := svc.GetPlayableByCode(ctx, "  "+strings.ToLower(quiz.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, playable.ID)
}

func TestVerifyByCodeReportsStatus(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())

	quiz, err := svc.CreateQuiz(1, CreateQuizInput{Title: "Verify me", Questions: threeQuestions()})
	require.NoError(t, err)

	info, err := svc.VerifyByCode(quiz.Code)
	require.NoError(t, err)
	assert.Equal(t, model.QuizDraft, info.Status)
	assert.Equal(t, "Verify me", info.Title)

	_, err = svc.VerifyByCode("NOPE42")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestListForOwnerAndActive(t *testing.T) {
	svc := newQuizService(newTestDB(t), newTestConfig())
	ctx := context.Background()

	first, err := svc.CreateQuiz(1, CreateQuizInput{Title: "Mine", Questions: threeQuestions()})
	require.NoError(t, err)
	_, err = svc.CreateQuiz(2, CreateQuizInput{Title: "Someone else's", Questions: threeQuestions()})
	require.NoError(t, err)

	mine, err := svc.ListForOwner(1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Title)
	assert.Equal(t, 3, mine[0].QuestionCount)

	active, err := svc.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Activate(ctx, 1, first.ID)
	require.NoError(t, err)

	active, err = svc.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}
