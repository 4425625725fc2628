package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/services"
	"github.com/vendora-hq/vendora/pkg/response"
)

// ResourceHandler exposes the protectable-resource catalog and grant
// assignment to the admin UI.
type ResourceHandler struct {
	svc *services.GroupService
}

// NewResourceHandler constructs a ResourceHandler.
func NewResourceHandler(db *gorm.DB, audit *services.AuditService) (*ResourceHandler, error) {
	svc, err := services.NewGroupService(db, audit)
	if err != nil {
		return nil, err
	}
	return &ResourceHandler{svc: svc}, nil
}

// GET /api/access/resources
func (h *ResourceHandler) List(c *gin.Context) {
	resources, err := h.svc.ListResources(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resources)
}

type updateResourceRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description   *string `json:"description" validate:"omitempty,max=512"`
	SortOrder     *int    `json:"sort_order"`
	IsActive      *bool   `json:"is_active"`
	RequiredLevel *int    `json:"required_level" validate:"omitempty,min=1"`
}

// PATCH /api/access/resources/:id
func (h *ResourceHandler) Update(c *gin.Context) {
	var body updateResourceRequest
	if !bindAndValidate(c, &body) {
		return
	}

	resource, err := h.svc.UpdateResource(requestContext(c), c.Param("id"), services.UpdateResourceInput{
		Name:          body.Name,
		Description:   body.Description,
		SortOrder:     body.SortOrder,
		IsActive:      body.IsActive,
		RequiredLevel: body.RequiredLevel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resource)
}

// PUT /api/access/resources/:id/groups
func (h *ResourceHandler) SetGroups(c *gin.Context) {
	var body setGroupsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.AssignGroupsToResource(requestContext(c), c.Param("id"), body.GroupIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// POST /api/access/resources/:id/groups
func (h *ResourceHandler) AddGroup(c *gin.Context) {
	var body memberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.AddGroupToResource(requestContext(c), c.Param("id"), body.GroupID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"added": true})
}

// DELETE /api/access/resources/:id/groups/:groupId
func (h *ResourceHandler) RemoveGroup(c *gin.Context) {
	if err := h.svc.RemoveGroupFromResource(requestContext(c), c.Param("id"), c.Param("groupId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
