package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gaigenticai/regulens-autoscaler/internal/controller"
	"github.com/gaigenticai/regulens-autoscaler/pkg/models"
)

// ScalingController is the slice of the controller the API needs.
type ScalingController interface {
	GetStatus() models.ControllerStatus
	SetParameters(params controller.Parameters) error
	Enable()
	Disable()
}

type ControllerHandler struct {
	controller ScalingController
}

func NewControllerHandler(ctrl ScalingController) *ControllerHandler {
	return &ControllerHandler{controller: ctrl}
}

func (h *ControllerHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.GetStatus())
}

type ParametersRequest struct {
	MinReplicas     *int `json:"min_replicas"`
	MaxReplicas     *int `json:"max_replicas"`
	CooldownSeconds *int `json:"cooldown_seconds"`
	IntervalSeconds *int `json:"interval_seconds"`
}

func (h *ControllerHandler) SetParameters(c *gin.Context) {
	var req ParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.MinReplicas == nil && req.MaxReplicas == nil &&
		req.CooldownSeconds == nil && req.IntervalSeconds == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no parameters provided"})
		return
	}

	err := h.controller.SetParameters(controller.Parameters{
		MinReplicas:     req.MinReplicas,
		MaxReplicas:     req.MaxReplicas,
		CooldownSeconds: req.CooldownSeconds,
		IntervalSeconds: req.IntervalSeconds,
	})
	if err != nil {
		if errors.Is(err, controller.ErrInvalidBounds) || errors.Is(err, controller.ErrInvalidInterval) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, h.controller.GetStatus())
}

func (h *ControllerHandler) Enable(c *gin.Context) {
	h.controller.Enable()
	c.JSON(http.StatusOK, h.controller.GetStatus())
}

func (h *ControllerHandler) Disable(c *gin.Context) {
	h.controller.Disable()
	c.JSON(http.StatusOK, h.controller.GetStatus())
}
