package service

import (
	"testing"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	session, playable, rejoined, err := svc.Join(10, "Stu Dent", "stu@example.com", quiz.Code)
	require.NoError(t, err)
	assert.False(t, rejoined)
	assert.Equal(t, 3, session.TotalQuestions)
	assert.Equal(t, model.SessionActive, session.Status)
	assert.Equal(t, quiz.Title, playable.Title)

	again, _, rejoined, err := svc.Join(10, "Stu Dent", "stu@example.com", quiz.Code)
	require.NoError(t, err)
	assert.True(t, rejoined)
	assert.Equal(t, session.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&model.QuizSession{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// 不同学生各自开新会话
	_, _, rejoined, err = svc.Join(11, "Other", "other@example.com", quiz.Code)
	require.NoError(t, err)
	assert.False(t, rejoined)
}

func TestJoinGuards(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)

	quiz, err := quizSvc.CreateQuiz(1, CreateQuizInput{Title: "Draft", Questions: threeQuestions()})
	require.NoError(t, err)

	_, _, _, err = svc.Join(10, "Stu", "stu@example.com", quiz.Code)
	assert.ErrorIs(t, err, util.ErrQuizNotActive)

	_, _, _, err = svc.Join(10, "Stu", "stu@example.com", "ZZZZZZ")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestUpdateRecalculatesProgress(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	session, _, _, err := svc.Join(10, "Stu", "stu@example.com", quiz.Code)
	require.NoError(t, err)
	before := session.LastActivity

	one := 1
	updated, err := svc.Update(UpdateSessionInput{
		SessionID:       session.ID,
		CurrentQuestion: &one,
		Answers:         map[string]string{quiz.Questions[0].ID: "Paris"},
	})
	require.NoError(t, err)
	assert.Equal(t, 33, updated.Progress) // round(1/3*100)
	assert.False(t, updated.LastActivity.Before(before))
	assert.Equal(t, map[string]string{quiz.Questions[0].ID: "Paris"}, updated.AnswerMap())

	two := 2
	updated, err = svc.Update(UpdateSessionInput{SessionID: session.ID, CurrentQuestion: &two})
	require.NoError(t, err)
	assert.Equal(t, 67, updated.Progress) // round(2/3*100)

	_, err = svc.Update(UpdateSessionInput{SessionID: "missing"})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestUpdateCompletionStampsResult(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	session, _, _, err := svc.Join(10, "Stu", "stu@example.com", quiz.Code)
	require.NoError(t, err)

	completed := model.SessionCompleted
	score := 66.67
	timeSpent := 120
	updated, err := svc.Update(UpdateSessionInput{
		SessionID: session.ID,
		Status:    &completed,
		Score:     &score,
		TimeSpent: &timeSpent,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	require.NotNil(t, updated.Score)
	assert.Equal(t, 66.67, *updated.Score)
	require.NotNil(t, updated.TimeSpent)
	assert.Equal(t, 120, *updated.TimeSpent)
}

func TestCleanupRemovesOnlyExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	stale, _, _, err := svc.Join(10, "Stale", "stale@example.com", quiz.Code)
	require.NoError(t, err)
	fresh, _, _, err := svc.Join(11, "Fresh", "fresh@example.com", quiz.Code)
	require.NoError(t, err)

	// 把一条会话的开始时间拨回TTL之外
	expired := time.Now().Add(-3 * time.Hour)
	require.NoError(t, db.Model(&model.QuizSession{}).
		Where("id = ?", stale.ID).
		Update("start_time", expired).Error)

	deleted, err := svc.Cleanup()
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining []model.QuizSession
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)

	// 再跑一次没有可删的
	deleted, err = svc.Cleanup()
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestParticipantsMergesActiveAndCompleted(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)
	subSvc := newSubmissionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	_, _, _, err := svc.Join(10, "Active Annie", "annie@example.com", quiz.Code)
	require.NoError(t, err)

	_, err = subSvc.Submit(11, "Done Dan", "dan@example.com", quiz.Code, map[string]string{
		quiz.Questions[0].ID: "Paris",
		quiz.Questions[1].ID: "True",
		quiz.Questions[2].ID: "red",
	}, 90)
	require.NoError(t, err)

	snapshot, err := svc.Participants(1, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.Code, snapshot.Quiz.Code)
	require.Len(t, snapshot.Participants, 2)

	byName := map[string]Participant{}
	for _, p := range snapshot.Participants {
		byName[p.Name] = p
	}

	annie := byName["Active Annie"]
	assert.Equal(t, string(model.SessionActive), annie.Status)
	assert.Nil(t, annie.Score)
	require.NotNil(t, annie.TotalQuestions)
	assert.Equal(t, 3, *annie.TotalQuestions)

	dan := byName["Done Dan"]
	assert.Equal(t, string(model.SessionCompleted), dan.Status)
	assert.Equal(t, 100, dan.Progress)
	require.NotNil(t, dan.Score)
	assert.InDelta(t, 100.0, *dan.Score, 0.001)
	require.NotNil(t, dan.CompletedAt)
}

func TestParticipantsWindowAndOwnership(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	quizSvc := newQuizService(db, cfg)
	svc := newSessionService(db, cfg)
	quiz := seedActiveQuiz(t, quizSvc, 1)

	session, _, _, err := svc.Join(10, "Idle Ivy", "ivy@example.com", quiz.Code)
	require.NoError(t, err)

	// 停滞超出回看窗口的会话不出现在快照里
	stale := time.Now().Add(-11 * time.Minute)
	require.NoError(t, db.Model(&model.QuizSession{}).
		Where("id = ?", session.ID).
		Update("last_activity", stale).Error)

	snapshot, err := svc.Participants(1, quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Participants)

	_, err = svc.Participants(2, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotQuizOwner)

	_, err = svc.Participants(1, "no-such-quiz")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}
