package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
	"github.com/anime-shed/palette-inspector/pkg/models"

	"github.com/gabriel-vasile/mimetype"
)

// AnalyzePath is the endpoint the remote analyzer serves
const AnalyzePath = "/api/analyze"

const maxResponseBytes = 1 << 20

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// HTTPAnalyzer posts the selfies to a remote analyzer as multipart form data
// (parts image0..imageN) and decodes the JSON profile it returns.
type HTTPAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAnalyzer creates a client for the analyzer served at baseURL
func NewHTTPAnalyzer(baseURL string, timeout time.Duration) *HTTPAnalyzer {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPAnalyzer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *HTTPAnalyzer) Analyze(ctx context.Context, files []models.UploadedFile) (*models.AnalysisResult, error) {
	body, contentType, err := encodeImages(files)
	if err != nil {
		return nil, apperrors.NewAnalysisFailureError("failed to encode images", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+AnalyzePath, body)
	if err != nil {
		return nil, apperrors.NewAnalysisFailureError("failed to build analyze request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Palette-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.NewAnalysisFailureError("failed to analyze images", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, apperrors.NewAnalysisFailureError("failed to analyze images",
			fmt.Errorf("status code %d", resp.StatusCode))
	}

	var result models.AnalysisResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, apperrors.NewAnalysisFailureError("failed to decode analysis result", err)
	}
	return &result, nil
}

func (h *HTTPAnalyzer) Name() string {
	return "http"
}

// encodeImages writes one part per file, named image0..imageN in list order
func encodeImages(files []models.UploadedFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image%d"; filename="%s"`,
			i, quoteEscaper.Replace(f.Name)))
		header.Set("Content-Type", PartContentType(f))

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// PartContentType returns the declared media type, falling back to content sniffing
func PartContentType(f models.UploadedFile) string {
	ct := strings.TrimSpace(f.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		return mimetype.Detect(f.Data).String()
	}
	return ct
}
