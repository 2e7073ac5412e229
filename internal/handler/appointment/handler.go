package appointment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
	"github.com/medicitas/clinic-api/internal/service/lifecycle"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
	"github.com/medicitas/clinic-api/pkg/httputil"
)

type Handler struct {
	service *lifecycle.Service
}

func NewHandler(service *lifecycle.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments", h.BookAppointment)
	r.GET("/appointments/:id", h.GetAppointment)
	r.GET("/appointments", h.ListAppointments)
	r.POST("/appointments/:id/attend", h.AttendAppointment)
	r.POST("/appointments/:id/history", h.SubmitHistory)
	r.GET("/appointments/:id/history-status", h.HistoryStatus)
	r.POST("/appointments/:id/reschedule", h.RescheduleAppointment)
	r.POST("/appointments/:id/no-show", h.MarkNoShow)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid doctor ID", err))
		return
	}

	appointments, err := h.service.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

type attendRequest struct {
	Completion *model.PatientCompletion `json:"completion"`
}

// AttendAppointment marks the appointment completed. The body is
// optional; it carries demographic completion fields when the patient
// record is missing them.
func (h *Handler) AttendAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	var req attendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
			return
		}
	}

	apt, err := h.service.Attend(c.Request.Context(), id, req.Completion)
	if err != nil {
		var dup *lifecycle.DuplicateIdentityError
		if errors.As(err, &dup) {
			httputil.RespondWithErrorDetails(c, err, gin.H{
				"conflicting_patient": gin.H{
					"id":         dup.Conflict.ID,
					"first_name": dup.Conflict.FirstName,
					"last_name":  dup.Conflict.LastName,
				},
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) SubmitHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	var input model.ClinicalHistoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	historyID, err := h.service.SubmitHistory(c.Request.Context(), id, &input)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"history_id": historyID}})
}

func (h *Handler) HistoryStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	needed, err := h.service.NeedsHistory(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"needs_history": needed})
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid appointment ID", err))
		return
	}

	var req model.NoShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.MarkNoShow(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}
