package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo *repository.QuizRepository
	Redis    *redis.Client
	Cfg      *config.Config
}

func NewQuizService(quizRepo *repository.QuizRepository, rdb *redis.Client, cfg *config.Config) *QuizService {
	return &QuizService{
		QuizRepo: quizRepo,
		Redis:    rdb,
		Cfg:      cfg,
	}
}

type QuestionInput struct {
	Type          model.QuestionType `json:"type"`
	Text          string             `json:"text"`
	Options       []string           `json:"options"`
	CorrectAnswer string             `json:"correctAnswer"`
}

type CreateQuizInput struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	TimeLimit        int             `json:"timeLimit"`
	ShuffleQuestions bool            `json:"shuffleQuestions"`
	ShuffleOptions   bool            `json:"shuffleOptions"`
	Questions        []QuestionInput `json:"questions"`
}

var validQuestionTypes = map[model.QuestionType]bool{
	model.MultipleChoice: true,
	model.TrueFalse:      true,
	model.Numerical:      true,
	model.ShortAnswer:    true,
}

// CreateQuiz 初始状态draft；短码随机重试直到未被占用
func (s *QuizService) CreateQuiz(ownerID uint, in CreateQuizInput) (*model.Quiz, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, util.ErrTitleRequired
	}
	if len(in.Questions) == 0 {
		return nil, util.ErrQuestionlessQuiz
	}

	questions := make([]model.QuizQuestion, 0, len(in.Questions))
	for i, q := range in.Questions {
		if !validQuestionTypes[q.Type] {
			return nil, fmt.Errorf("%w: question %d has unknown type %q", util.ErrInvalidQuestion, i+1, q.Type)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("%w: question %d text is required", util.ErrInvalidQuestion, i+1)
		}

		var options json.RawMessage
		switch q.Type {
		case model.MultipleChoice, model.TrueFalse:
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("%w: question %d needs at least two options", util.ErrInvalidQuestion, i+1)
			}
			// 正确答案必须出现在选项中，创建期拒绝而非悄悄判零分
			found := false
			for _, opt := range q.Options {
				if opt == q.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				return nil, util.ErrAnswerNotInOptions
			}
			raw, err := json.Marshal(q.Options)
			if err != nil {
				return nil, err
			}
			options = raw
		default:
			// numerical / short-answer 无选项
			options = nil
		}

		questions = append(questions, model.QuizQuestion{
			Type:          q.Type,
			Text:          q.Text,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			Order:         i,
		})
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	timeLimit := in.TimeLimit
	if timeLimit <= 0 {
		timeLimit = 10
	}

	quiz := &model.Quiz{
		Title:            in.Title,
		Description:      in.Description,
		Code:             code,
		TimeLimit:        timeLimit,
		ShuffleQuestions: in.ShuffleQuestions,
		ShuffleOptions:   in.ShuffleOptions,
		Status:           model.QuizDraft,
		CreatedBy:        ownerID,
		Questions:        questions,
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// 码空间远大于测验量，期望重试次数接近1
func (s *QuizService) uniqueCode() (string, error) {
	for {
		code := util.GenerateQuizCode(s.Cfg.Quiz.CodeLength)
		exists, err := s.QuizRepo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

// Activate draft -> active，所有权与当前状态都不满足时先报所有权
func (s *QuizService) Activate(ctx context.Context, ownerID uint, quizID string) (*model.Quiz, error) {
	return s.transition(ctx, ownerID, quizID, model.QuizDraft, model.QuizActive)
}

// End active -> completed；不级联处理进行中的会话
func (s *QuizService) End(ctx context.Context, ownerID uint, quizID string) (*model.Quiz, error) {
	return s.transition(ctx, ownerID, quizID, model.QuizActive, model.QuizCompleted)
}

func (s *QuizService) transition(ctx context.Context, ownerID uint, quizID string, from, to model.QuizStatus) (*model.Quiz, error) {
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
	if quiz.Status != from {
		return nil, util.ErrInvalidTransition
	}

	if err := s.QuizRepo.UpdateStatus(quiz.ID, to); err != nil {
		return nil, err
	}
	quiz.Status = to

	s.invalidatePlayCache(ctx, quiz.Code)
	return quiz, nil
}

// PlayableQuestion 发给学生的题目视图，永不携带正确答案
type PlayableQuestion struct {
	ID      string             `json:"id"`
	Type    model.QuestionType `json:"type"`
	Text    string             `json:"text"`
	Options []string           `json:"options,omitempty"`
}

type PlayableQuiz struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	TimeLimit        int                `json:"timeLimit"`
	ShuffleQuestions bool               `json:"shuffleQuestions"`
	ShuffleOptions   bool               `json:"shuffleOptions"`
	Questions        []PlayableQuestion `json:"questions"`
}

func buildPlayable(quiz *model.Quiz) *PlayableQuiz {
	questions := make([]PlayableQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, PlayableQuestion{
			ID:      q.ID,
			Type:    q.Type,
			Text:    q.Text,
			Options: q.OptionList(),
		})
	}
	return &PlayableQuiz{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		TimeLimit:        quiz.TimeLimit,
		ShuffleQuestions: quiz.ShuffleQuestions,
		ShuffleOptions:   quiz.ShuffleOptions,
		Questions:        questions,
	}
}

func (s *QuizService) playCacheKey(code string) string {
	return "quiz:play:" + code
}

func (s *QuizService) invalidatePlayCache(ctx context.Context, code string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, s.playCacheKey(code))
}

// GetPlayableByCode 读穿缓存；redis不可用时退回数据库路径
func (s *QuizService) GetPlayableByCode(ctx context.Context, code string) (*PlayableQuiz, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, s.playCacheKey(code)).Result(); err == nil {
			var cached PlayableQuiz
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	quiz, err := s.QuizRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != model.QuizActive {
		return nil, util.ErrQuizNotActive
	}

	playable := buildPlayable(quiz)

	if s.Redis != nil {
		if raw, err := json.Marshal(playable); err == nil {
			ttl := time.Duration(s.Cfg.Quiz.PlayCacheTTLMinutes) * time.Minute
			s.Redis.Set(ctx, s.playCacheKey(code), raw, ttl)
		}
	}

	return playable, nil
}

// QuizInfo 加入前的预检视图，不限制状态
type QuizInfo struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Status    model.QuizStatus `json:"status"`
	TimeLimit int              `json:"timeLimit"`
}

func (s *QuizService) VerifyByCode(code string) (*QuizInfo, error) {
	quiz, err := s.QuizRepo.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return &QuizInfo{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Status:    quiz.Status,
		TimeLimit: quiz.TimeLimit,
	}, nil
}

type QuizSummary struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Code          string           `json:"code"`
	TimeLimit     int              `json:"timeLimit"`
	Status        model.QuizStatus `json:"status"`
	QuestionCount int              `json:"questionCount"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func (s *QuizService) ListForOwner(ownerID uint) ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, QuizSummary{
			ID:            q.ID,
			Title:         q.Title,
			Description:   q.Description,
			Code:          q.Code,
			TimeLimit:     q.TimeLimit,
			Status:        q.Status,
			QuestionCount: len(q.Questions),
			CreatedAt:     q.CreatedAt,
			UpdatedAt:     q.UpdatedAt,
		})
	}
	return summaries, nil
}

// ListActive 学生端"可加入"列表，不含题目
func (s *QuizService) ListActive() ([]QuizSummary, error) {
	quizzes, err := s.QuizRepo.ListByStatus(model.QuizActive)
	if err != nil {
		return nil, err
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		count, err := s.QuizRepo.CountQuestions(q.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, QuizSummary{
			ID:            q.ID,
			Title:         q.Title,
			Description:   q.Description,
			Code:          q.Code,
			TimeLimit:     q.TimeLimit,
			Status:        q.Status,
			QuestionCount: int(count),
			CreatedAt:     q.CreatedAt,
			UpdatedAt:     q.UpdatedAt,
		})
	}
	return summaries, nil
}

// OwnedQuiz 所有权校验后返回完整测验（含正确答案），仅教师视图使用
func (s *QuizService) OwnedQuiz(ownerID uint, quizID string) (*model.Quiz, error) {
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
	return quiz, nil
}
