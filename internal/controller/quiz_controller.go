package controller

import (
	"context"
	"errors"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// QuestionRequest 单个题目载荷
type QuestionRequest struct {
	Type          string   `json:"type" binding:"required,oneof=multiple-choice true-false numerical short-answer"`
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

// swagger:model CreateQuizRequest
type CreateQuizRequest struct {
	Title            string            `json:"title" binding:"required"`
	Description      string            `json:"description"`
	TimeLimit        int               `json:"timeLimit"`
	ShuffleQuestions bool              `json:"shuffleQuestions"`
	ShuffleOptions   bool              `json:"shuffleOptions"`
	Questions        []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// Create godoc
// @Summary 创建测验
// @Description 教师创建带题目的测验，生成唯一参与码，初始为草稿状态
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateQuizRequest true "测验内容"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Failure 403 {object} util.Response "非教师账号"
// @Router /api/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	var req CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	in := service.CreateQuizInput{
		Title:            req.Title,
		Description:      req.Description,
		TimeLimit:        req.TimeLimit,
		ShuffleQuestions: req.ShuffleQuestions,
		ShuffleOptions:   req.ShuffleOptions,
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, service.QuestionInput{
			Type:          model.QuestionType(q.Type),
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	quiz, err := c.QuizService.CreateQuiz(claims.UserID, in)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTitleRequired),
			errors.Is(err, util.ErrQuestionlessQuiz),
			errors.Is(err, util.ErrInvalidQuestion):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrAnswerNotInOptions):
			util.BadRequest(ctx, "Correct answer must be one of the options")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"quiz": quiz})
}

// Activate godoc
// @Summary 开始测验
// @Description 将草稿状态的测验置为进行中，学生可凭码加入
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "状态不允许该操作"
// @Failure 403 {object} util.Response "非本人创建的测验"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/activate [patch]
func (c *QuizController) Activate(ctx *gin.Context) {
	c.transition(ctx, c.QuizService.Activate)
}

// End godoc
// @Summary 结束测验
// @Description 将进行中的测验置为已完成，不再接受加入与提交
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "状态不允许该操作"
// @Failure 403 {object} util.Response "非本人创建的测验"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/end [patch]
func (c *QuizController) End(ctx *gin.Context) {
	c.transition(ctx, c.QuizService.End)
}

func (c *QuizController) transition(ctx *gin.Context, fn func(ctx context.Context, ownerID uint, quizID string) (*model.Quiz, error)) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := fn(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, "Quiz not found")
		case errors.Is(err, util.ErrNotQuizOwner):
			util.Forbidden(ctx, "Not authorized to manage this quiz")
		case errors.Is(err, util.ErrInvalidTransition):
			util.BadRequest(ctx, "Quiz is not in a state that allows this operation")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"quiz": quiz})
}

// GetByCode godoc
// @Summary 按参与码获取可作答测验
// @Description 返回进行中测验的题目，不包含正确答案
// @Tags 测验
// @Produce  json
// @Param   code path string true "参与码"
// @Success 200 {object} util.Response{data=service.PlayableQuiz} "成功"
// @Failure 400 {object} util.Response "测验未开始或已结束"
// @Failure 404 {object} util.Response "参与码无效"
// @Router /api/quizzes/by-code/{code} [get]
func (c *QuizController) GetByCode(ctx *gin.Context) {
	quiz, err := c.QuizService.GetPlayableByCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, "Quiz not found")
		case errors.Is(err, util.ErrQuizNotActive):
			util.BadRequest(ctx, "Quiz is not currently active")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"quiz": quiz})
}

// Verify godoc
// @Summary 校验参与码
// @Description 加入前的轻量校验，返回测验概要与当前状态
// @Tags 测验
// @Produce  json
// @Param   code path string true "参与码"
// @Success 200 {object} util.Response{data=service.QuizInfo} "成功"
// @Failure 404 {object} util.Response "参与码无效"
// @Router /api/quizzes/verify/{code} [get]
func (c *QuizController) Verify(ctx *gin.Context) {
	info, err := c.QuizService.VerifyByCode(ctx.Param("code"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx, "Quiz not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"quiz": info})
}

// ListActive godoc
// @Summary 列出进行中的测验
// @Description 供学生浏览当前可加入的测验
// @Tags 测验
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/quizzes/active [get]
func (c *QuizController) ListActive(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListActive()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quizzes": quizzes})
}

// ListMine godoc
// @Summary 列出本人创建的测验
// @Description 教师侧测验列表，按创建时间倒序
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/quizzes [get]
func (c *QuizController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListForOwner(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quizzes": quizzes})
}

// Get godoc
// @Summary 获取测验详情
// @Description 教师查看自己测验的完整内容，含正确答案
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 403 {object} util.Response "非本人创建的测验"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.QuizService.OwnedQuiz(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, "Quiz not found")
		case errors.Is(err, util.ErrNotQuizOwner):
			util.Forbidden(ctx, "Not authorized to view this quiz")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"quiz": quiz})
}
