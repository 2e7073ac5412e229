package alert

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	alertsvc "github.com/medicitas/clinic-api/internal/service/alert"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
	"github.com/medicitas/clinic-api/pkg/httputil"
)

type Handler struct {
	aggregator *alertsvc.Aggregator
}

func NewHandler(aggregator *alertsvc.Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors/:id/alerts", h.ActiveAlerts)
	r.GET("/doctors/:id/calendar", h.CalendarBuckets)
}

func (h *Handler) ActiveAlerts(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid doctor ID", err))
		return
	}

	feed, err := h.aggregator.ActiveAlerts(c.Request.Context(), doctorID, time.Now())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, feed)
}

func (h *Handler) CalendarBuckets(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid doctor ID", err))
		return
	}

	from := c.Query("from")
	to := c.Query("to")

	buckets, err := h.aggregator.CalendarBuckets(c.Request.Context(), doctorID, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, buckets)
}
