package samples

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lcms-backend/internal/rawfiles"
	"lcms-backend/internal/shared/server/middleware"
	"lcms-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the samples service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches sample routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/samples", h.createSample)
	rg.GET("/samples", h.listSamples)
	rg.GET("/samples/:id", h.getSample)
	rg.GET("/samples/:id/channels", h.getSampleChannels)
}

type createSampleRequest struct {
	SampleID  string `json:"sampleId" binding:"required"`
	BatchID   string `json:"batchId"`
	SMILES    string `json:"smiles" binding:"required"`
	RawFileID string `json:"rawFileId" binding:"required"`
}

func (h *Handler) createSample(c *gin.Context) {
	var req createSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sampleId, smiles and rawFileId are required", nil)
		return
	}

	c.Set("sampleId", req.SampleID)
	if req.BatchID != "" {
		c.Set("batchId", req.BatchID)
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	sample, err := h.Svc.Create(ctx, req.SampleID, req.BatchID, req.SMILES, req.RawFileID)
	if err != nil {
		switch {
		case errors.Is(err, rawfiles.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "raw file not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register sample", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"id":       sample.ID,
		"sampleId": sample.SampleID,
		"status":   sample.Status,
	})
}

func (h *Handler) getSample(c *gin.Context) {
	sampleID := c.Param("id")
	if sampleID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sample id is required", nil)
		return
	}
	c.Set("sampleId", sampleID)

	sample, err := h.Svc.Get(c.Request.Context(), sampleID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "sample not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch sample", nil)
		}
		return
	}

	resp := gin.H{
		"id":       sample.ID,
		"sampleId": sample.SampleID,
		"status":   sample.Status,
	}
	if sample.BatchID != "" {
		resp["batchId"] = sample.BatchID
	}
	if sample.Status == StatusCompleted && sample.Result != nil {
		resp["result"] = resultSummary(sample.Result)
	}
	if sample.Status == StatusFailed {
		resp["errorCode"] = sample.ErrorCode
		resp["errorMessage"] = sample.ErrorMessage
	}

	respond.JSON(c, http.StatusOK, resp)
}

// getSampleChannels returns the retained chromatographic traces for plotting.
func (h *Handler) getSampleChannels(c *gin.Context) {
	sampleID := c.Param("id")
	if sampleID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sample id is required", nil)
		return
	}
	c.Set("sampleId", sampleID)

	sample, err := h.Svc.Get(c.Request.Context(), sampleID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "sample not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch sample", nil)
		}
		return
	}
	if sample.Status != StatusCompleted || sample.Result == nil {
		respond.Error(c, http.StatusConflict, "not_ready", "sample analysis has not completed", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"id":            sample.ID,
		"positiveTic":   sample.Result.PositiveTIC,
		"negativeTic":   sample.Result.NegativeTIC,
		"pdaAbsorbance": sample.Result.PDAAbsorbance,
	})
}

func (h *Handler) listSamples(c *gin.Context) {
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

	if batchID := c.Query("batchId"); batchID != "" {
		c.Set("batchId", batchID)
	}

	list, err := h.Svc.List(c.Request.Context(), c.Query("batchId"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list samples", nil)
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, sample := range list {
		item := gin.H{
			"id":        sample.ID,
			"sampleId":  sample.SampleID,
			"status":    sample.Status,
			"createdAt": sample.CreatedAt,
		}
		if sample.BatchID != "" {
			item["batchId"] = sample.BatchID
		}
		if sample.Status == StatusCompleted && sample.Result != nil {
			item["productDetected"] = sample.Result.ProductDetected
			item["purity"] = sample.Result.Purity
		}
		if sample.Status == StatusFailed && sample.ErrorCode != nil {
			item["errorCode"] = *sample.ErrorCode
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

// resultSummary shapes the result payload for the sample endpoint, leaving
// the bulky channel traces to the channels endpoint.
func resultSummary(r *Result) gin.H {
	out := gin.H{
		"formula":          r.Formula,
		"monoisotopicMass": r.MonoisotopicMass,
		"mhMass":           r.MHMass,
		"mnaMass":          r.MNaMass,
		"mhMinusMass":      r.MHMinusMass,
		"productDetected":  r.ProductDetected,
		"purity":           r.Purity,
	}
	if r.DetectedMass != nil {
		out["detectedMass"] = *r.DetectedMass
	}
	if r.RetentionTime != nil {
		out["retentionTime"] = *r.RetentionTime
	}
	if len(r.MajorPeaks) > 0 {
		out["majorPeaks"] = r.MajorPeaks
	}
	if r.Correlation != nil {
		out["correlation"] = r.Correlation
	}
	return out
}
