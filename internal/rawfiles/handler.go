package rawfiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lcms-backend/internal/shared/server/respond"
)

const maxUploadSize = 200 << 20 // 200MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches raw file routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/raw-files", h.upload)
	rg.GET("/raw-files/:id", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	raw, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnsupportedFormat):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload raw file", nil)
		}
		return
	}

	c.Set("rawFileId", raw.ID)
	respond.JSON(c, http.StatusCreated, gin.H{
		"rawFileId":  raw.ID,
		"fileName":   raw.FileName,
		"sizeBytes":  raw.SizeBytes,
		"uploadedAt": raw.CreatedAt,
	})
}

func (h *Handler) get(c *gin.Context) {
	fileID := c.Param("id")
	if fileID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "raw file id is required", nil)
		return
	}
	c.Set("rawFileId", fileID)

	raw, err := h.Svc.Get(c.Request.Context(), fileID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "raw file not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch raw file", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"rawFileId":  raw.ID,
		"fileName":   raw.FileName,
		"sizeBytes":  raw.SizeBytes,
		"uploadedAt": raw.CreatedAt,
	})
}
