package handler

import (
	"net/http"

	"jobtrack/internal/api/dto"
	"jobtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	service service.WorkflowService
}

func NewWorkflowHandler(svc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

func (h *WorkflowHandler) List(c *gin.Context) {
	workflows, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflows)
}

func (h *WorkflowHandler) Create(c *gin.Context) {
	workflow, err := h.service.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workflow)
}

func (h *WorkflowHandler) Get(c *gin.Context) {
	workflow, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if workflow == nil {
		notFound(c, "workflow")
		return
	}
	c.JSON(http.StatusOK, workflow)
}

func (h *WorkflowHandler) Update(c *gin.Context) {
	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	workflow, err := h.service.Update(c.Request.Context(), c.Param("id"), req.Mutations)
	if err != nil {
		respondError(c, err)
		return
	}
	if workflow == nil {
		notFound(c, "workflow")
		return
	}
	c.JSON(http.StatusOK, workflow)
}

// Rename accepts the plain form post `name=<value>`.
func (h *WorkflowHandler) Rename(c *gin.Context) {
	var req dto.RenameWorkflowRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	workflow, err := h.service.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	if workflow == nil {
		notFound(c, "workflow")
		return
	}
	c.JSON(http.StatusOK, workflow)
}

func (h *WorkflowHandler) Delete(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		notFound(c, "workflow")
		return
	}
	c.Status(http.StatusNoContent)
}
