package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"taskhub/backend/internal/middleware"
	"taskhub/backend/internal/models"
	"taskhub/backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type ProjectCreateRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req.Name, req.Description, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	userID := middleware.CurrentUserID(c)
	isAdmin := middleware.CurrentUserRole(c) == models.RoleAdmin

	projects, meta, err := h.projectService.GetAll(c.Request.Context(), userID, isAdmin, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"meta":     meta,
	})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var patch services.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidationError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, patch, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

type AddMemberRequest struct {
	UserID      string             `json:"userId" binding:"required,uuid"`
	ProjectRole models.ProjectRole `json:"projectRole" binding:"required,oneof=MEMBER VIEWER"`
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	member, err := h.projectService.AddMember(c.Request.Context(),
		projectID, uuid.FromStringOrNil(req.UserID), req.ProjectRole, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

type UpdateMemberRequest struct {
	ProjectRole models.ProjectRole `json:"projectRole" binding:"required,oneof=MEMBER VIEWER"`
}

func (h *ProjectHandler) UpdateMember(c *gin.Context) {
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathUUID(c, "memberId")
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	member, err := h.projectService.UpdateMemberRole(c.Request.Context(),
		projectID, memberID, req.ProjectRole, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathUUID(c, "memberId")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), projectID, memberID, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return services.NormalizePage(page, pageSize)
}

func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"message": "Path parameter " + param + " must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}
