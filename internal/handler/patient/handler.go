package patient

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
	"github.com/medicitas/clinic-api/internal/service/lifecycle"
	patientsvc "github.com/medicitas/clinic-api/internal/service/patient"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
	"github.com/medicitas/clinic-api/pkg/httputil"
)

type Handler struct {
	service *patientsvc.Service
}

func NewHandler(service *patientsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients", h.RegisterPatient)
	r.GET("/patients/:id", h.GetPatient)
	r.GET("/patients/:id/histories", h.ListHistories)
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	patient, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		var dup *lifecycle.DuplicateIdentityError
		if errors.As(err, &dup) {
			httputil.RespondWithErrorDetails(c, err, gin.H{
				"conflicting_patient_id": dup.Conflict.ID,
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
		return
	}

	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) ListHistories(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid patient ID", err))
		return
	}

	histories, err := h.service.Histories(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, histories)
}
