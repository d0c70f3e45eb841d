package service

import (
	"encoding/json"
	"errors"
	"math"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

type QuizSessionService struct {
	SessionRepo    *repository.QuizSessionRepository
	QuizRepo       *repository.QuizRepository
	SubmissionRepo *repository.QuizSubmissionRepository
	Cfg            *config.Config
}

func NewQuizSessionService(
	sessionRepo *repository.QuizSessionRepository,
	quizRepo *repository.QuizRepository,
	submissionRepo *repository.QuizSubmissionRepository,
	cfg *config.Config,
) *QuizSessionService {
	return &QuizSessionService{
		SessionRepo:    sessionRepo,
		QuizRepo:       quizRepo,
		SubmissionRepo: submissionRepo,
		Cfg:            cfg,
	}
}

// Join 幂等加入：已有active会话时原样返回。题目总数取加入瞬间的快照，
// 之后编辑测验不回溯影响在途会话
func (s *QuizSessionService) Join(studentID uint, studentName, studentEmail, code string) (*model.QuizSession, *PlayableQuiz, bool, error) {
	quiz, err := s.QuizRepo.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, util.ErrQuizNotFound
		}
		return nil, nil, false, err
	}
	if quiz.Status != model.QuizActive {
		return nil, nil, false, util.ErrQuizNotActive
	}

	playable := buildPlayable(quiz)

	existing, err := s.SessionRepo.FindActiveByQuizAndStudent(quiz.ID, studentID)
	if err == nil {
		return existing, playable, true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, false, err
	}

	now := time.Now()
	session := &model.QuizSession{
		QuizID:          quiz.ID,
		QuizCode:        quiz.Code,
		StudentID:       studentID,
		StudentName:     studentName,
		StudentEmail:    studentEmail,
		Status:          model.SessionActive,
		CurrentQuestion: 0,
		TotalQuestions:  len(quiz.Questions),
		Progress:        0,
		StartTime:       now,
		LastActivity:    now,
	}

	if err := s.SessionRepo.Create(session); err != nil {
		return nil, nil, false, err
	}
	return session, playable, false, nil
}

type UpdateSessionInput struct {
	SessionID       string
	CurrentQuestion *int
	Answers         map[string]string
	Status          *model.SessionStatus
	Score           *float64
	TimeSpent       *int
}

// Update 答案整张替换（last-write-wins）；进度由服务端重算；
// 会话记录中的得分为客户端上报值，权威得分在提交记录里
func (s *QuizSessionService) Update(in UpdateSessionInput) (*model.QuizSession, error) {
	session, err := s.SessionRepo.FindByID(in.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	if in.CurrentQuestion != nil {
		session.CurrentQuestion = *in.CurrentQuestion
	}
	if session.TotalQuestions > 0 {
		session.Progress = int(math.Round(float64(session.CurrentQuestion) / float64(session.TotalQuestions) * 100))
	} else {
		session.Progress = 0
	}
	session.LastActivity = time.Now()

	if in.Answers != nil {
		raw, err := json.Marshal(in.Answers)
		if err != nil {
			return nil, err
		}
		session.Answers = raw
	}

	if in.Status != nil {
		session.Status = *in.Status
		if *in.Status == model.SessionCompleted {
			now := time.Now()
			session.CompletedAt = &now
			session.Score = in.Score
			session.TimeSpent = in.TimeSpent
		}
	}

	if err := s.SessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Cleanup 删除startTime早于 now-TTL 的会话，不区分状态
func (s *QuizSessionService) Cleanup() (int64, error) {
	threshold := time.Now().Add(-time.Duration(s.Cfg.Session.TTLHours) * time.Hour)
	return s.SessionRepo.DeleteStartedBefore(threshold)
}

// Participant 监控快照里的一行，active来自会话，completed来自提交
type Participant struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Progress        int        `json:"progress"`
	Score           *float64   `json:"score"`
	CompletedAt     *time.Time `json:"completedAt"`
	TimeSpent       *int       `json:"timeSpent"`
	CurrentQuestion *int       `json:"currentQuestion"`
	TotalQuestions  *int       `json:"totalQuestions"`
	Status          string     `json:"status"`
}

type ParticipantSnapshot struct {
	Quiz         QuizInfoWithCode `json:"quiz"`
	Participants []Participant    `json:"participants"`
}

type QuizInfoWithCode struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Code      string           `json:"code"`
	Status    model.QuizStatus `json:"status"`
	TimeLimit int              `json:"timeLimit"`
}

// Participants 时点快照，监控端轮询刷新；回看窗口剔除停滞的加入
func (s *QuizSessionService) Participants(ownerID uint, quizID string) (*ParticipantSnapshot, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatedBy != ownerID {
		return nil, util.ErrNotQuizOwner
	}

	since := time.Now().Add(-time.Duration(s.Cfg.Session.MonitorWindowMinutes) * time.Minute)

	sessions, err := s.SessionRepo.ListActiveSince(quiz.ID, since)
	if err != nil {
		return nil, err
	}
	submissions, err := s.SubmissionRepo.ListByQuizSince(quiz.ID, since)
	if err != nil {
		return nil, err
	}

	participants := make([]Participant, 0, len(sessions)+len(submissions))
	for _, sess := range sessions {
		cq := sess.CurrentQuestion
		tq := sess.TotalQuestions
		participants = append(participants, Participant{
			ID:              sess.ID,
			Name:            sess.StudentName,
			Email:           sess.StudentEmail,
			Progress:        sess.Progress,
			CurrentQuestion: &cq,
			TotalQuestions:  &tq,
			Status:          string(model.SessionActive),
		})
	}
	for _, sub := range submissions {
		score := sub.Score
		timeSpent := sub.TimeSpent
		completedAt := sub.SubmittedAt
		participants = append(participants, Participant{
			ID:          sub.ID,
			Name:        sub.StudentName,
			Email:       sub.StudentEmail,
			Progress:    100,
			Score:       &score,
			CompletedAt: &completedAt,
			TimeSpent:   &timeSpent,
			Status:      string(model.SessionCompleted),
		})
	}

	return &ParticipantSnapshot{
		Quiz: QuizInfoWithCode{
			ID:        quiz.ID,
			Title:     quiz.Title,
			Code:      quiz.Code,
			Status:    quiz.Status,
			TimeLimit: quiz.TimeLimit,
		},
		Participants: participants,
	}, nil
}
