package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/services"
	"github.com/vendora-hq/vendora/pkg/response"
)

// UserHandler exposes account administration: listing, creation and the
// status toggles guarded by the super-user floor.
type UserHandler struct {
	svc *services.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, audit *services.AuditService) (*UserHandler, error) {
	svc, err := services.NewUserService(db, audit)
	if err != nil {
		return nil, err
	}
	return &UserHandler{svc: svc}, nil
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.GetUser(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type createUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"max=64"`
	LastName    string `json:"last_name" validate:"max=64"`
	IsSuperUser bool   `json:"is_super_user"`
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.svc.CreateUser(requestContext(c), services.CreateUserInput{
		Username:    body.Username,
		Email:       body.Email,
		Password:    body.Password,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		IsSuperUser: body.IsSuperUser,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

type setFlagRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// PUT /api/users/:id/super-user
func (h *UserHandler) SetSuperUser(c *gin.Context) {
	var body setFlagRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetSuperUser(requestContext(c), c.Param("id"), *body.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// PUT /api/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	var body setFlagRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetActive(requestContext(c), c.Param("id"), *body.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// GET /api/users/:id/can-demote
func (h *UserHandler) CanDemote(c *gin.Context) {
	ok, err := h.svc.CanDemoteSuperUser(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"can_demote": ok})
}
