package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/interface/middleware"
	"github.com/oksasatya/bmi-service/pkg/response"
	"github.com/oksasatya/bmi-service/pkg/validation"
)

type BMIHandler struct {
	Svc    *application.BMIService
	Logger *logrus.Logger
}

func NewBMIHandler(svc *application.BMIService, logger *logrus.Logger) *BMIHandler {
	return &BMIHandler{Svc: svc, Logger: logger}
}

// Presence and zero checks live in BMIService so both variants report
// "<field> is required" the same way. Name is ignored when authenticated.
type createBMIRequest struct {
	Weight int     `json:"weight"`
	Height int     `json:"height"`
	BMI    float64 `json:"bmi"`
	Status string  `json:"status"`
	Name   string  `json:"name"`
}

func (h *BMIHandler) Create(c *gin.Context) {
	var req createBMIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.CreateBMIInput{
		Weight: req.Weight,
		Height: req.Height,
		BMI:    req.BMI,
		Status: req.Status,
		Name:   req.Name,
	}
	if uid, ok := middleware.CurrentUserID(c); ok {
		in.UserID = uid
		in.Name = ""
	}

	b, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, b.View())
}

func (h *BMIHandler) List(c *gin.Context) {
	list, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, entity.BMIViews(list))
}

func (h *BMIHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	b, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, b.View())
}

// Mine lists the caller's own records.
func (h *BMIHandler) Mine(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		writeServiceError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	list, err := h.Svc.ListForOwner(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, entity.BMIViews(list))
}
