package handler

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/helioskrill/alma-control/docs"
	"github.com/helioskrill/alma-control/internal/dto"
	"github.com/helioskrill/alma-control/internal/metrics"
	"github.com/helioskrill/alma-control/internal/service"
)

type Handler struct {
	ingestService    service.IngestServicer
	analyticsService service.AnalyticsServicer
	operatorService  service.OperatorServicer
	syncService      service.SyncServicer
	webhookToken     string
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(
	ingestService service.IngestServicer,
	analyticsService service.AnalyticsServicer,
	operatorService service.OperatorServicer,
	syncService service.SyncServicer,
	webhookToken string,
	log *zap.Logger,
) *Handler {
	h := &Handler{
		ingestService:    ingestService,
		analyticsService: analyticsService,
		operatorService:  operatorService,
		syncService:      syncService,
		webhookToken:     webhookToken,
		router:           gin.Default(),
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.receiveWebhook)
	h.router.POST("/events/import", h.importEvents)
	h.router.POST("/events/manual", h.createEvent)
	h.router.DELETE("/events/:id", h.deleteEvent)
	h.router.GET("/operators", h.listOperators)
	h.router.POST("/operators", h.createOperator)
	h.router.DELETE("/operators/:id", h.deleteOperator)
	h.router.GET("/summaries", h.getSummaries)
	h.router.GET("/summaries/:operatorId", h.getOperatorSummary)
	h.router.GET("/heatmap", h.getHeatmap)
	h.router.GET("/anomalies", h.getAnomalies)
	h.router.GET("/history", h.getHistory)
	h.router.POST("/sync/run", h.runSync)
	h.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// receiveWebhook handles POST /events
// @Summary Receive PDA events
// @Description Accept a webhook batch of raw PDA records, normalize them and queue the accepted events
// @Tags events
// @Accept json
// @Produce json
// @Param token query string true "Webhook token"
// @Param payload body dto.ImportEventsRequest true "Event payload (bare array, events object or single event)"
// @Success 200 {object} dto.ImportReport
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) receiveWebhook(c *gin.Context) {
	if h.webhookToken != "" {
		token := c.Query("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
			h.log.Warn("Webhook request with bad token",
				zap.String("remote", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid webhook token",
			})
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	raws, userMap, source, err := dto.ParseWebhookPayload(body)
	if err != nil {
		h.log.Warn("Webhook payload without events", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	report, err := h.ingestService.IngestWebhook(c.Request.Context(), raws, userMap, source)
	if err != nil {
		h.log.Error("Failed to process webhook batch",
			zap.Error(err),
			zap.String("source", source),
			zap.Int("event_count", len(raws)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// importEvents handles POST /events/import
// @Summary Import events in bulk
// @Description Normalize and insert a batch of exported ALMA records synchronously
// @Tags events
// @Accept json
// @Produce json
// @Param batch body dto.ImportEventsRequest true "Import batch"
// @Success 200 {object} dto.ImportReport
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/import [post]
func (h *Handler) importEvents(c *gin.Context) {
	var req dto.ImportEventsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid import request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	report, err := h.ingestService.ImportEvents(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to import events",
			zap.Error(err),
			zap.Int("event_count", len(req.Events)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// createEvent handles POST /events/manual
// @Summary Create an event manually
// @Description Insert a single manually entered event
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.CreateEventRequest true "Event data"
// @Success 201 {object} dto.CreateEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/manual [post]
func (h *Handler) createEvent(c *gin.Context) {
	var req dto.CreateEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid manual event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ev, err := h.ingestService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("operator_id", req.OperatorID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dto.CreateEventResponse{
		EventID: ev.EventID,
		Status:  "created",
	})
}

// deleteEvent handles DELETE /events/:id
// @Summary Delete an event
// @Description Remove one event by its ID
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/{id} [delete]
func (h *Handler) deleteEvent(c *gin.Context) {
	eventID := c.Param("id")

	if err := h.ingestService.DeleteEvent(c.Request.Context(), eventID); err != nil {
		h.log.Error("Failed to delete event",
			zap.Error(err),
			zap.String("event_id", eventID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// listOperators handles GET /operators
// @Summary List operators
// @Description List every registered operator
// @Tags operators
// @Produce json
// @Success 200 {array} domain.Operator
// @Failure 500 {object} dto.ErrorResponse
// @Router /operators [get]
func (h *Handler) listOperators(c *gin.Context) {
	operators, err := h.operatorService.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list operators", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, operators)
}

// createOperator handles POST /operators
// @Summary Create an operator
// @Description Register a new operator
// @Tags operators
// @Accept json
// @Produce json
// @Param operator body dto.CreateOperatorRequest true "Operator data"
// @Success 201 {object} domain.Operator
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /operators [post]
func (h *Handler) createOperator(c *gin.Context) {
	var req dto.CreateOperatorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid operator request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	op, err := h.operatorService.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create operator",
			zap.Error(err),
			zap.String("name", req.Name))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, op)
}

// deleteOperator handles DELETE /operators/:id
// @Summary Delete an operator
// @Description Remove an operator from the roster
// @Tags operators
// @Produce json
// @Param id path string true "Operator ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} dto.ErrorResponse
// @Router /operators/{id} [delete]
func (h *Handler) deleteOperator(c *gin.Context) {
	operatorID := c.Param("id")

	if err := h.operatorService.Delete(c.Request.Context(), operatorID); err != nil {
		h.log.Error("Failed to delete operator",
			zap.Error(err),
			zap.String("operator_id", operatorID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// getSummaries handles GET /summaries
// @Summary Shift summaries for all operators
// @Description Compute the per-operator shift summary for one day
// @Tags analytics
// @Produce json
// @Param date query string false "Shift date (YYYY-MM-DD, defaults to today)"
// @Param start_time query string false "Shift start (HH:MM)"
// @Param end_time query string false "Shift end (HH:MM)"
// @Param threshold query number false "Inactivity gap threshold in minutes"
// @Param preset query string false "Activity preset (solo_picking, operativa, todo)"
// @Param categories query []string false "Explicit activity categories"
// @Success 200 {array} analytics.OperatorShiftSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /summaries [get]
func (h *Handler) getSummaries(c *gin.Context) {
	var q dto.SummaryQuery

	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	summaries, err := h.analyticsService.AllSummaries(c.Request.Context(), q)
	if err != nil {
		h.log.Error("Failed to compute summaries",
			zap.Error(err),
			zap.String("date", q.Date))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// getOperatorSummary handles GET /summaries/:operatorId
// @Summary Shift summary for one operator
// @Description Compute the shift summary for a single operator
// @Tags analytics
// @Produce json
// @Param operatorId path string true "Operator ID"
// @Param date query string false "Shift date (YYYY-MM-DD, defaults to today)"
// @Param start_time query string false "Shift start (HH:MM)"
// @Param end_time query string false "Shift end (HH:MM)"
// @Param threshold query number false "Inactivity gap threshold in minutes"
// @Success 200 {object} analytics.OperatorShiftSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /summaries/{operatorId} [get]
func (h *Handler) getOperatorSummary(c *gin.Context) {
	operatorID := c.Param("operatorId")

	var q dto.SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	summary, err := h.analyticsService.OperatorSummary(c.Request.Context(), operatorID, q)
	if err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: err.Error(),
			})
			return
		}
		h.log.Error("Failed to compute operator summary",
			zap.Error(err),
			zap.String("operator_id", operatorID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// getHeatmap handles GET /heatmap
// @Summary Activity heatmap
// @Description Per-operator event counts in 15-minute shift slots
// @Tags analytics
// @Produce json
// @Param date query string false "Shift date (YYYY-MM-DD, defaults to today)"
// @Param start_time query string false "Shift start (HH:MM)"
// @Param end_time query string false "Shift end (HH:MM)"
// @Success 200 {object} analytics.Heatmap
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /heatmap [get]
func (h *Handler) getHeatmap(c *gin.Context) {
	var q dto.SummaryQuery

	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	heatmap, err := h.analyticsService.Heatmap(c.Request.Context(), q)
	if err != nil {
		h.log.Error("Failed to build heatmap",
			zap.Error(err),
			zap.String("date", q.Date))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, heatmap)
}

// getAnomalies handles GET /anomalies
// @Summary Detect anomalies
// @Description Scan events for duplicate orders, shared devices, improbable speed and out-of-shift activity
// @Tags analytics
// @Produce json
// @Param date query string false "Limit the scan to one shift date (YYYY-MM-DD)"
// @Success 200 {array} analytics.Anomaly
// @Failure 500 {object} dto.ErrorResponse
// @Router /anomalies [get]
func (h *Handler) getAnomalies(c *gin.Context) {
	var q dto.SummaryQuery

	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	anomalies, err := h.analyticsService.Anomalies(c.Request.Context(), q)
	if err != nil {
		h.log.Error("Failed to detect anomalies",
			zap.Error(err),
			zap.String("date", q.Date))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, anomalies)
}

// getHistory handles GET /history
// @Summary Daily totals history
// @Description Per-operator daily event totals over the last N days
// @Tags analytics
// @Produce json
// @Param days query int false "Number of days (1-90, default 7)"
// @Success 200 {object} analytics.DailyTotals
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /history [get]
func (h *Handler) getHistory(c *gin.Context) {
	var q dto.HistoryQuery

	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	history, err := h.analyticsService.History(c.Request.Context(), q.Days)
	if err != nil {
		h.log.Error("Failed to build history",
			zap.Error(err),
			zap.Int("days", q.Days))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, history)
}

// runSync handles POST /sync/run
// @Summary Run the SQL sync connector
// @Description Resolve the sync window and report the connector status
// @Tags sync
// @Accept json
// @Produce json
// @Param run body dto.SyncRunRequest false "Sync parameters"
// @Success 200 {object} dto.SyncStatus
// @Router /sync/run [post]
func (h *Handler) runSync(c *gin.Context) {
	var req dto.SyncRunRequest
	// Body is optional; an empty run uses the configured defaults.
	_ = c.ShouldBindJSON(&req)

	status := h.syncService.Run(c.Request.Context(), &req)

	c.JSON(http.StatusOK, status)
}
