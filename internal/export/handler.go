package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lcms-backend/internal/samples"
	"lcms-backend/internal/shared/server/respond"
)

// exportLimit bounds one export to a single page of samples.
const exportLimit = 100

// Handler wires HTTP handlers to the export writers.
type Handler struct {
	Samples *samples.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *samples.Service) *Handler {
	return &Handler{Samples: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/batches/:id/export", h.exportBatch)
}

func (h *Handler) exportBatch(c *gin.Context) {
	batchID := c.Param("id")
	if batchID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "batch id is required", nil)
		return
	}
	c.Set("batchId", batchID)

	format := c.DefaultQuery("format", "csv")

	list, err := h.Samples.List(c.Request.Context(), batchID, exportLimit, 0)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load batch", nil)
		return
	}
	if len(list) == 0 {
		respond.Error(c, http.StatusNotFound, "not_found", "batch has no samples", nil)
		return
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("batch-%s-%s", batchID, stamp)

	switch format {
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := WriteCSV(c.Writer, list); err != nil {
			c.Abort()
		}
	case "xlsx":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := WriteXLSX(c.Writer, list); err != nil {
			c.Abort()
		}
	case "jsonl":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".jsonl"))
		c.Header("Content-Type", "application/x-ndjson")
		c.Status(http.StatusOK)
		if err := WriteJSONL(c.Writer, list); err != nil {
			c.Abort()
		}
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be csv, xlsx or jsonl", nil)
	}
}
