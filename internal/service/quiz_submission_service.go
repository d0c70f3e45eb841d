package service

import (
	"encoding/json"
	"errors"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

type QuizSubmissionService struct {
	SubmissionRepo *repository.QuizSubmissionRepository
	QuizRepo       *repository.QuizRepository
	Cfg            *config.Config
}

func NewQuizSubmissionService(
	submissionRepo *repository.QuizSubmissionRepository,
	quizRepo *repository.QuizRepository,
	cfg *config.Config,
) *QuizSubmissionService {
	return &QuizSubmissionService{
		SubmissionRepo: submissionRepo,
		QuizRepo:       quizRepo,
		Cfg:            cfg,
	}
}

// answersEqual 判分比较策略全站统一，由配置决定是否忽略大小写
func (s *QuizSubmissionService) answersEqual(submitted, correct string) bool {
	if s.Cfg.Quiz.CaseInsensitiveAnswers {
		return strings.EqualFold(submitted, correct)
	}
	return submitted == correct
}

// Submit 得分由服务端按题面顺序逐题比对计算，客户端上报的得分不参与。
// 不设去重：同一学生可对同一测验多次提交
func (s *QuizSubmissionService) Submit(studentID uint, studentName, studentEmail, code string, answers map[string]string, timeSpent int) (*model.QuizSubmission, error) {
	quiz, err := s.QuizRepo.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != model.QuizActive {
		return nil, util.ErrQuizNotActive
	}

	correct := 0
	for _, q := range quiz.Questions {
		if s.answersEqual(answers[q.ID], q.CorrectAnswer) {
			correct++
		}
	}

	total := len(quiz.Questions)
	var score float64
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	submission := &model.QuizSubmission{
		QuizID:         quiz.ID,
		QuizCode:       quiz.Code,
		StudentID:      studentID,
		StudentName:    studentName,
		StudentEmail:   studentEmail,
		Answers:        raw,
		Score:          score,
		TotalQuestions: total,
		TimeSpent:      timeSpent,
		SubmittedAt:    time.Now(),
	}

	if err := s.SubmissionRepo.Create(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// ReviewQuestion 学生回顾视图里的题目，此时允许携带正确答案
type ReviewQuestion struct {
	ID            string             `json:"id"`
	Text          string             `json:"text"`
	Type          model.QuestionType `json:"type"`
	CorrectAnswer string             `json:"correctAnswer"`
}

type SubmissionReview struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	TimeSpent   int               `json:"timeSpent"`
	SubmittedAt time.Time         `json:"submittedAt"`
	QuizTitle   string            `json:"quizTitle"`
	Questions   []ReviewQuestion  `json:"questions"`
	Answers     map[string]string `json:"answers"`
}

// StudentResult 仅提交者本人可见
func (s *QuizSubmissionService) StudentResult(studentID uint, submissionID string) (*SubmissionReview, error) {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.StudentID != studentID {
		return nil, util.ErrNotSubmissionOwner
	}

	quiz, err := s.QuizRepo.FindByID(submission.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	questions := make([]ReviewQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, ReviewQuestion{
			ID:            q.ID,
			Text:          q.Text,
			Type:          q.Type,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	return &SubmissionReview{
		ID:          submission.ID,
		Score:       submission.Score,
		TimeSpent:   submission.TimeSpent,
		SubmittedAt: submission.SubmittedAt,
		QuizTitle:   quiz.Title,
		Questions:   questions,
		Answers:     submission.AnswerMap(),
	}, nil
}

type StudentSubmissionRow struct {
	ID          string            `json:"id"`
	Quiz        QuizSummary       `json:"quiz"`
	Score       float64           `json:"score"`
	TimeSpent   int               `json:"timeSpent"`
	SubmittedAt time.Time         `json:"submittedAt"`
	Answers     map[string]string `json:"answers"`
}

// ListForStudent 学生自己的历史提交；测验已被删除时保留提交行
func (s *QuizSubmissionService) ListForStudent(studentID uint) ([]StudentSubmissionRow, error) {
	submissions, err := s.SubmissionRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	rows := make([]StudentSubmissionRow, 0, len(submissions))
	for _, sub := range submissions {
		summary := QuizSummary{
			ID:    sub.QuizID,
			Title: "Quiz Not Found",
			Code:  sub.QuizCode,
		}
		if quiz, err := s.QuizRepo.FindByID(sub.QuizID); err == nil {
			summary = QuizSummary{
				ID:            quiz.ID,
				Title:         quiz.Title,
				Code:          quiz.Code,
				TimeLimit:     quiz.TimeLimit,
				Status:        quiz.Status,
				QuestionCount: len(quiz.Questions),
				CreatedAt:     quiz.CreatedAt,
				UpdatedAt:     quiz.UpdatedAt,
			}
		}
		rows = append(rows, StudentSubmissionRow{
			ID:          sub.ID,
			Quiz:        summary,
			Score:       sub.Score,
			TimeSpent:   sub.TimeSpent,
			SubmittedAt: sub.SubmittedAt,
			Answers:     sub.AnswerMap(),
		})
	}
	return rows, nil
}

type QuizStatistics struct {
	TotalSubmissions int     `json:"totalSubmissions"`
	AverageScore     float64 `json:"averageScore"`
	HighestScore     float64 `json:"highestScore"`
	LowestScore      float64 `json:"lowestScore"`
	AverageTimeSpent int     `json:"averageTimeSpent"` // seconds
}

type SubmissionRow struct {
	ID           string            `json:"id"`
	StudentName  string            `json:"studentName"`
	StudentEmail string            `json:"studentEmail"`
	Score        float64           `json:"score"`
	TimeSpent    int               `json:"timeSpent"`
	SubmittedAt  time.Time         `json:"submittedAt"`
	Answers      map[string]string `json:"answers"`
}

type QuizResults struct {
	Quiz       QuizSummary     `json:"quiz"`
	Statistics QuizStatistics  `json:"statistics"`
	Results    []SubmissionRow `json:"results"`
}

// TeacherResults 不按学生去重：允许重复提交时每次尝试都计入统计
func (s *QuizSubmissionService) TeacherResults(ownerID uint, quizID string) (*QuizResults, error) {
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

	submissions, err := s.SubmissionRepo.ListByQuiz(quiz.ID)
	if err != nil {
		return nil, err
	}

	stats := QuizStatistics{TotalSubmissions: len(submissions)}
	if len(submissions) > 0 {
		var sumScore float64
		var sumTime int
		stats.HighestScore = submissions[0].Score
		stats.LowestScore = submissions[0].Score
		for _, sub := range submissions {
			sumScore += sub.Score
			sumTime += sub.TimeSpent
			if sub.Score > stats.HighestScore {
				stats.HighestScore = sub.Score
			}
			if sub.Score < stats.LowestScore {
				stats.LowestScore = sub.Score
			}
		}
		stats.AverageScore = sumScore / float64(len(submissions))
		stats.AverageTimeSpent = sumTime / len(submissions)
	}

	rows := make([]SubmissionRow, 0, len(submissions))
	for _, sub := range submissions {
		rows = append(rows, SubmissionRow{
			ID:           sub.ID,
			StudentName:  sub.StudentName,
			StudentEmail: sub.StudentEmail,
			Score:        sub.Score,
			TimeSpent:    sub.TimeSpent,
			SubmittedAt:  sub.SubmittedAt,
			Answers:      sub.AnswerMap(),
		})
	}

	return &QuizResults{
		Quiz: QuizSummary{
			ID:            quiz.ID,
			Title:         quiz.Title,
			Code:          quiz.Code,
			TimeLimit:     quiz.TimeLimit,
			Status:        quiz.Status,
			QuestionCount: len(quiz.Questions),
			CreatedAt:     quiz.CreatedAt,
			UpdatedAt:     quiz.UpdatedAt,
		},
		Statistics: stats,
		Results:    rows,
	}, nil
}
