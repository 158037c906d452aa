package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
}

type UserController struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserController(users UserStore, logger *zap.Logger) *UserController {
	return &UserController{users: users, logger: logger}
}

// GET /api/users?role=professional — the booking UI needs the professional
// roster, so listing is open to any authenticated viewer.
func (uc *UserController) List(c *gin.Context) {
	role := model.Role(c.DefaultQuery("role", string(model.RoleProfessional)))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	users, err := uc.users.ListByRole(c.Request.Context(), role)
	if err != nil {
		uc.logger.Error("list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, users)
}

type createUserReq struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// POST /api/users (admin only, enforced by the route group)
func (uc *UserController) Create(c *gin.Context) {
	var req createUserReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     role,
		IsActive: true,
	}
	if err := uc.users.Create(c.Request.Context(), user); err != nil {
		uc.logger.Error("create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, user)
}
