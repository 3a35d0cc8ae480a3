package controller

import (
	"net/http"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type setRoleRequest struct {
	Email string         `json:"email" binding:"required,email"`
	Role  model.UserRole `json:"role" binding:"required,oneof=candidate admin"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration payload"
// @Success 201 {object} util.Response
// @Router /api/auth/register [post]
func (ctl *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctl.authService.Register(req.Name, req.Email, req.Password, model.Candidate)
	if err != nil {
		if err == util.ErrEmailRegistered {
			util.Error(c, http.StatusConflict, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, user)
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} util.Response
// @Router /api/auth/login [post]
func (ctl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, user, err := ctl.authService.Login(req.Email, req.Password)
	if err != nil {
		if err == util.ErrInvalidCredentials {
			util.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me godoc
// @Summary Current authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/auth/me [get]
func (ctl *AuthController) Me(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	user, err := ctl.authService.GetUser(claims.UserID)
	if err != nil {
		if err == util.ErrUserNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, user)
}

// SetRole godoc
// @Summary Set a user's role by email
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body setRoleRequest true "Role assignment"
// @Success 200 {object} util.Response
// @Router /api/auth/set-role [post]
func (ctl *AuthController) SetRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctl.authService.SetRole(req.Email, req.Role)
	if err != nil {
		if err == util.ErrUserNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, user)
}

// CheckRole godoc
// @Summary Look up a user's role by email
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param email query string true "User email"
// @Success 200 {object} util.Response
// @Router /api/auth/check-role [get]
func (ctl *AuthController) CheckRole(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		util.BadRequest(c, "email is required")
		return
	}

	user, err := ctl.authService.GetUserByEmail(email)
	if err != nil {
		if err == util.ErrUserNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{"email": user.Email, "role": user.Role})
}

// ListUsers godoc
// @Summary List users
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /api/auth/users [get]
func (ctl *AuthController) ListUsers(c *gin.Context) {
	page := int(util.MustParseUint(c.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(c.DefaultQuery("limit", "20")))

	users, total, err := ctl.authService.ListUsers(page, limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}
