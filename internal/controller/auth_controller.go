package controller

import (
	"errors"
	"fmt"
	"net/http"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	Cfg         *config.Config
	IsRelease   bool // 是否为生产环境
}

func NewAuthController(authService *service.AuthService, cfg *config.Config, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		Cfg:         cfg,
		IsRelease:   isRelease,
	}
}

// 登录态写入HttpOnly Cookie，浏览器端对脚本不可见
func (c *AuthController) setTokenCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(c.Cfg.JWT.CookieName, token, int(c.Cfg.JWT.ExpireTime.Seconds()), "/", "", c.IsRelease, true)
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=student teacher"`
}

// Register godoc
// @Summary 注册新用户
// @Description 使用提供的信息注册新用户，注册成功后直接登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误或邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.UserRole(req.Role),
	}

	token, err := c.AuthService.Register(user)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEmailRegistered):
			util.BadRequest(ctx, "User already exists")
		case errors.Is(err, service.ErrInvalidEmail):
			util.BadRequest(ctx, "Invalid email format")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	c.setTokenCookie(ctx, token)
	util.Created(ctx, gin.H{
		"message": fmt.Sprintf("Welcome, %s!", user.Name),
		"user":    user,
	})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 验证用户身份，令牌写入HttpOnly Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) || errors.Is(err, util.ErrUserNotFound) {
			// 账号不存在与密码错误给同一提示，避免探测已注册邮箱
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	c.setTokenCookie(ctx, token)
	// Cookie为主，token兼作Bearer头场景
	util.Success(ctx, gin.H{
		"message": fmt.Sprintf("Welcome back, %s!", user.Name),
		"token":   token,
		"user":    user,
	})
}

// Logout godoc
// @Summary 退出登录
// @Description 清除认证Cookie
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response "成功"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(c.Cfg.JWT.CookieName, "", -1, "/", "", c.IsRelease, true)
	util.Success(ctx, gin.H{"message": "Logged out"})
}

// GetCurrentUser godoc
// @Summary 获取当前用户
// @Description 获取当前已认证用户的信息
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/auth/me [get]
func (c *AuthController) GetCurrentUser(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, gin.H{"user": user})
}
