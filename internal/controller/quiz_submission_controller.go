package controller

import (
	"errors"

	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type QuizSubmissionController struct {
	SubmissionService *service.QuizSubmissionService
}

func NewQuizSubmissionController(submissionService *service.QuizSubmissionService) *QuizSubmissionController {
	return &QuizSubmissionController{SubmissionService: submissionService}
}

// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	QuizCode  string            `json:"quizCode" binding:"required"`
	Answers   map[string]string `json:"answers" binding:"required"`
	TimeSpent int               `json:"timeSpent"`
}

// Submit godoc
// @Summary 提交答卷
// @Description 服务端按正确答案评分并持久化提交记录，返回得分
// @Tags 提交
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SubmitQuizRequest true "答卷内容"
// @Success 201 {object} util.Response{data=object} "提交成功"
// @Failure 400 {object} util.Response "测验未开始或已结束"
// @Failure 401 {object} util.Response "未授权"
// @Failure 404 {object} util.Response "参与码无效"
// @Router /api/quizzes/submit [post]
func (c *QuizSubmissionController) Submit(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.SubmissionService.Submit(claims.UserID, claims.Name, claims.Email, req.QuizCode, req.Answers, req.TimeSpent)
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

	monitoring.SubmissionsScored.Inc()
	util.Created(ctx, gin.H{
		"message":        "Quiz submitted",
		"submissionId":   submission.ID,
		"score":          submission.Score,
		"totalQuestions": submission.TotalQuestions,
	})
}

// StudentResult godoc
// @Summary 查看单次提交结果
// @Description 学生复盘自己的答卷：逐题对照本人答案与正确答案
// @Tags 提交
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "提交ID"
// @Success 200 {object} util.Response{data=service.SubmissionReview} "成功"
// @Failure 403 {object} util.Response "非本人提交"
// @Failure 404 {object} util.Response "提交不存在"
// @Router /api/quizzes/results/{id} [get]
func (c *QuizSubmissionController) StudentResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	review, err := c.SubmissionService.StudentResult(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSubmissionNotFound):
			util.NotFound(ctx, "Submission not found")
		case errors.Is(err, util.ErrNotSubmissionOwner):
			util.Forbidden(ctx, "Not authorized to view this submission")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, review)
}

// MySubmissions godoc
// @Summary 查看本人提交历史
// @Description 学生侧提交列表，按提交时间倒序
// @Tags 提交
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/student/submissions [get]
func (c *QuizSubmissionController) MySubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	submissions, err := c.SubmissionService.ListForStudent(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"submissions": submissions})
}

// TeacherResults godoc
// @Summary 查看测验结果汇总
// @Description 教师查看测验的全部提交与统计指标（人数、平均分、最高最低分、平均用时）
// @Tags 提交
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizResults} "成功"
// @Failure 403 {object} util.Response "非本人创建的测验"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/results [get]
func (c *QuizSubmissionController) TeacherResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.SubmissionService.TeacherResults(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, "Quiz not found")
		case errors.Is(err, util.ErrNotQuizOwner):
			util.Forbidden(ctx, "Not authorized to view these results")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, results)
}
