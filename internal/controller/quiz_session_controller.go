package controller

import (
	"errors"
	"fmt"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type QuizSessionController struct {
	SessionService *service.QuizSessionService
}

func NewQuizSessionController(sessionService *service.QuizSessionService) *QuizSessionController {
	return &QuizSessionController{SessionService: sessionService}
}

// swagger:model JoinQuizRequest
type JoinQuizRequest struct {
	QuizCode string `json:"quizCode" binding:"required"`
}

// Join godoc
// @Summary 学生加入测验
// @Description 凭参与码加入进行中的测验；已有活跃会话时幂等返回原会话
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body JoinQuizRequest true "参与码"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "测验未开始或已结束"
// @Failure 401 {object} util.Response "未授权"
// @Failure 404 {object} util.Response "参与码无效"
// @Router /api/quiz-sessions/join [post]
func (c *QuizSessionController) Join(ctx *gin.Context) {
	var req JoinQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, quiz, rejoined, err := c.SessionService.Join(claims.UserID, claims.Name, claims.Email, req.QuizCode)
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

	message := fmt.Sprintf("Joined quiz: %s", quiz.Title)
	if rejoined {
		message = fmt.Sprintf("Rejoined quiz: %s", quiz.Title)
	}

	util.Success(ctx, gin.H{
		"message":   message,
		"sessionId": session.ID,
		"rejoined":  rejoined,
		"quiz":      quiz,
	})
}

// swagger:model UpdateSessionRequest
type UpdateSessionRequest struct {
	SessionID       string            `json:"sessionId" binding:"required"`
	CurrentQuestion *int              `json:"currentQuestion"`
	Answers         map[string]string `json:"answers"`
	Status          *string           `json:"status" binding:"omitempty,oneof=active completed abandoned"`
	Score           *float64          `json:"score"`
	TimeSpent       *int              `json:"timeSpent"`
}

// Update godoc
// @Summary 更新会话进度
// @Description 作答过程中的心跳：记录当前题号、已答答案与活跃时间；可标记会话完成或放弃
// @Tags 会话
// @Accept  json
// @Produce  json
// @Param   body body UpdateSessionRequest true "会话进度"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/quiz-sessions/update [patch]
func (c *QuizSessionController) Update(ctx *gin.Context) {
	var req UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in := service.UpdateSessionInput{
		SessionID:       req.SessionID,
		CurrentQuestion: req.CurrentQuestion,
		Answers:         req.Answers,
		Score:           req.Score,
		TimeSpent:       req.TimeSpent,
	}
	if req.Status != nil {
		status := model.SessionStatus(*req.Status)
		in.Status = &status
	}

	session, err := c.SessionService.Update(in)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx, "Session not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"sessionId": session.ID,
		"status":    session.Status,
		"progress":  session.Progress,
	})
}

// Cleanup godoc
// @Summary 清理过期会话
// @Description 删除开始时间超出保留期的残留会话记录
// @Tags 会话
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/quiz-sessions/cleanup [post]
func (c *QuizSessionController) Cleanup(ctx *gin.Context) {
	deleted, err := c.SessionService.Cleanup()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	monitoring.SessionsPurged.Add(float64(deleted))
	util.Success(ctx, gin.H{
		"message":      "Expired sessions cleaned up",
		"deletedCount": deleted,
	})
}

// Participants godoc
// @Summary 查看测验参与情况
// @Description 教师实时监控：活跃会话的进度与近期完成的提交
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.ParticipantSnapshot} "成功"
// @Failure 403 {object} util.Response "非本人创建的测验"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/participants [get]
func (c *QuizSessionController) Participants(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	snapshot, err := c.SessionService.Participants(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, "Quiz not found")
		case errors.Is(err, util.ErrNotQuizOwner):
			util.Forbidden(ctx, "Not authorized to monitor this quiz")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, snapshot)
}
