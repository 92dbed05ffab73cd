package runs

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/refine"
	"sitecopy-backend/internal/shared/server/middleware"
	"sitecopy-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the runs service.
type Handler struct {
	Svc     *Service
	limiter *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, limiter: newPollLimiter(pollLimitWindow, nil)}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assess", h.assess)
	rg.POST("/refine", h.startRefine)
	rg.POST("/variants", h.startVariants)
	rg.GET("/runs", h.listRuns)
	rg.GET("/runs/:id", h.getRun)
}

type assessRequest struct {
	Context   content.BusinessContext `json:"context"`
	Candidate content.Candidate       `json:"candidate"`
	Industry  string                  `json:"industry"`
}

func (h *Handler) assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	industry := req.Industry
	if industry == "" {
		industry = req.Context.Industry
	}
	assessment := h.Svc.Assessor.Assess(req.Candidate, req.Context, industry)
	respond.JSON(c, http.StatusOK, assessment)
}

type refineRequest struct {
	Context           content.BusinessContext `json:"context"`
	Baseline          content.Candidate       `json:"baseline"`
	QualityThreshold  int                     `json:"qualityThreshold"`
	MaxPasses         int                     `json:"maxPasses"`
	MaxRetriesPerPass int                     `json:"maxRetriesPerPass"`
}

func (h *Handler) startRefine(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Baseline.IsEmpty() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "baseline candidate is required", []map[string]string{
			{"field": "baseline", "issue": "required"},
		})
		return
	}

	params := refine.Params{
		QualityThreshold:  req.QualityThreshold,
		MaxPasses:         req.MaxPasses,
		MaxRetriesPerPass: req.MaxRetriesPerPass,
	}
	run, err := h.Svc.StartRefine(withHandlerRequestID(c), userID, req.Context, req.Baseline, params)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start refinement", nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"runId":  run.ID,
		"kind":   run.Kind,
		"status": run.Status,
	})
}

type variantsRequest struct {
	Context content.BusinessContext `json:"context"`
}

func (h *Handler) startVariants(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req variantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Context.BusinessName) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "business name is required", []map[string]string{
			{"field": "context.businessName", "issue": "required"},
		})
		return
	}

	run, err := h.Svc.StartVariants(withHandlerRequestID(c), userID, req.Context)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start variant selection", nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"runId":  run.ID,
		"kind":   run.Kind,
		"status": run.Status,
	})
}

func (h *Handler) getRun(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "run id is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	if !h.limiter.Allow(userID, runID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too frequently", nil)
		return
	}

	run, err := h.Svc.Get(c.Request.Context(), runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch run", nil)
		}
		return
	}
	if run.UserID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
		return
	}

	c.Set("runId", run.ID)

	resp := gin.H{
		"id":     run.ID,
		"kind":   run.Kind,
		"status": run.Status,
	}
	if run.Status == StatusCompleted && run.Result != nil {
		resp["result"] = run.Result
	}
	if run.Status == StatusFailed {
		if run.ErrorCode != nil {
			resp["errorCode"] = *run.ErrorCode
		}
		if run.ErrorMessage != nil {
			resp["errorMessage"] = *run.ErrorMessage
		}
		if run.ErrorRetryable != nil {
			resp["retryable"] = *run.ErrorRetryable
		}
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listRuns(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	userRuns, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		return
	}

	resp := make([]gin.H, 0, len(userRuns))
	for _, run := range userRuns {
		item := gin.H{
			"runId":     run.ID,
			"kind":      run.Kind,
			"status":    run.Status,
			"industry":  run.Industry,
			"createdAt": run.CreatedAt,
		}
		if run.Status == StatusCompleted && run.Result != nil {
			if score, ok := run.Result["afterScore"]; ok {
				item["afterScore"] = score
			}
			if improved, ok := run.Result["improved"]; ok {
				item["improved"] = improved
			}
			if winner, ok := run.Result["winner"]; ok {
				if w, ok := winner.(map[string]any); ok {
					item["winningAngle"] = w["angle"]
				}
			}
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

// withHandlerRequestID carries the request-scoped ID onto the context passed
// to the service so the async worker can log it after the response is sent.
func withHandlerRequestID(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}
