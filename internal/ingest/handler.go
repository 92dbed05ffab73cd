package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/shared/server/middleware"
	"sitecopy-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the ingest service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches ingest routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingest", h.ingest)
}

func (h *Handler) ingest(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", []map[string]string{
			{"field": "file", "issue": "required"},
		})
		return
	}

	var bctx content.BusinessContext
	if raw := strings.TrimSpace(c.PostForm("context")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &bctx); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "context is not valid JSON", []map[string]string{
				{"field": "context", "issue": "invalid_json"},
			})
			return
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to open upload", nil)
		return
	}
	defer f.Close()

	out, err := h.Svc.Ingest(c.Request.Context(), userID, fileHeader.Filename, f, bctx)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds the upload limit", nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "only PDF, DOCX and plain text are supported", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest file", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, out)
}
