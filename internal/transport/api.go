package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/pkg/models"
	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// analyzeAPI is the server side of the analyzer wire contract: parts named
// image0..imageN in, an AnalysisResult out.
func analyzeAPI(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), d.Config.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing color analysis request")

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format",
				apperrors.NewValidationError("expected a multipart body", err))
			return
		}

		files, err := readIndexedImages(form)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format",
				apperrors.NewValidationError("unreadable image part", err))
			return
		}

		result, err := d.Service.AnalyzeNow(ctx, files)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "color analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"images":             len(files),
			"season":             result.Season,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Color analysis completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

// readIndexedImages collects image0, image1, ... until the first missing index.
// Parts that are not images are skipped.
func readIndexedImages(form *multipart.Form) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	for i := 0; ; i++ {
		headers := form.File[fmt.Sprintf("image%d", i)]
		if len(headers) == 0 {
			break
		}
		f, err := readUpload(headers[0])
		if err != nil {
			return nil, err
		}
		if validation.IsImage(f) {
			files = append(files, f)
		}
	}
	return files, nil
}

// readUploads reads every file header in order
func readUploads(headers []*multipart.FileHeader) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(headers))
	for _, h := range headers {
		f, err := readUpload(h)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// readUpload loads one part into memory. A missing or generic declared type is
// replaced by the sniffed one.
func readUpload(h *multipart.FileHeader) (models.UploadedFile, error) {
	src, err := h.Open()
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("open %q: %w", h.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("read %q: %w", h.Filename, err)
	}

	f := models.UploadedFile{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}
	f.ContentType = analyzer.PartContentType(f)
	return f, nil
}
