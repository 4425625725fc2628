package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/services"
	"github.com/vendora-hq/vendora/pkg/response"
)

// GroupHandler exposes permission-group lifecycle operations to the admin UI.
type GroupHandler struct {
	svc *services.GroupService
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(db *gorm.DB, audit *services.AuditService) (*GroupHandler, error) {
	svc, err := services.NewGroupService(db, audit)
	if err != nil {
		return nil, err
	}
	return &GroupHandler{svc: svc}, nil
}

// GET /api/access/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.svc.ListGroups(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, groups)
}

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"max=512"`
}

// POST /api/access/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var body createGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.svc.CreateGroup(requestContext(c), services.CreateGroupInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, group)
}

type updateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

// PATCH /api/access/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	var body updateGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.svc.UpdateGroup(requestContext(c), c.Param("id"), services.UpdateGroupInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

// DELETE /api/access/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteGroup(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type memberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type setGroupsRequest struct {
	GroupIDs []string `json:"group_ids"`
}

// PUT /api/access/users/:id/groups
func (h *GroupHandler) SetUserGroups(c *gin.Context) {
	var body setGroupsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.SetUserGroups(requestContext(c), c.Param("id"), body.GroupIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// POST /api/access/users/:id/groups
func (h *GroupHandler) AddUserToGroup(c *gin.Context) {
	var body memberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.AddUserToGroup(requestContext(c), c.Param("id"), body.GroupID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"added": true})
}

// DELETE /api/access/users/:id/groups/:groupId
func (h *GroupHandler) RemoveUserFromGroup(c *gin.Context) {
	if err := h.svc.RemoveUserFromGroup(requestContext(c), c.Param("id"), c.Param("groupId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
