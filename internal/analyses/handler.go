package analyses

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/util"
)

// multipartOverhead covers boundaries and headers around the two files.
const multipartOverhead = 1 << 20

var chartKeyPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}\.png$`)

// Analyzer runs an analysis. *Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (Result, error)
}

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            Analyzer
	Charts         object.ObjectStore
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc Analyzer, charts object.ObjectStore, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, Charts: charts, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches analysis routes to the router group.
// Extra handlers run before the analyze endpoint only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, analyzeMiddleware ...gin.HandlerFunc) {
	analyze := append(append([]gin.HandlerFunc{}, analyzeMiddleware...), h.analyze)
	rg.POST("/analyses", analyze...)
	rg.GET("/charts/:key", h.chart)
}

// ChartURL is the public path of a stored chart.
func ChartURL(key string) string {
	if key == "" {
		return ""
	}
	return "/api/v1/charts/" + key
}

type analyzeResponse struct {
	Result
	ChartURL string `json:"chartUrl,omitempty"`
}

func (h *Handler) analyze(c *gin.Context) {
	req, err := ReadUploads(c, h.MaxUploadBytes)
	if err != nil {
		WriteError(c, err)
		return
	}
	req.RequestID = middleware.RequestIDFromContext(c)

	result, err := h.Svc.Analyze(WithRequestID(c.Request.Context(), req.RequestID), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	middleware.SetRunID(c, result.RunID)

	respond.OK(c, analyzeResponse{Result: result, ChartURL: ChartURL(result.ChartKey)})
}

func (h *Handler) chart(c *gin.Context) {
	key := c.Param("key")
	if !chartKeyPattern.MatchString(key) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid chart key", nil)
		return
	}
	if h.Charts == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "chart not found", nil)
		return
	}

	rc, err := h.Charts.Open(c.Request.Context(), chartKeyPrefix+key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "chart not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load chart", nil)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load chart", nil)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", data)
}

// WriteError renders an analysis error with the standard error body.
func WriteError(c *gin.Context, err error) {
	failure := Classify(err)
	respond.Error(c, failure.Status, failure.Code, failure.Message, failure.Details)
}

// ReadUploads reads the resume and jobDescription files from a multipart request.
func ReadUploads(c *gin.Context, maxUploadBytes int64) (AnalyzeRequest, error) {
	if maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxUploadBytes+multipartOverhead)
	}

	resume, err := readUpload(c, FieldResume, maxUploadBytes)
	if err != nil {
		return AnalyzeRequest{}, err
	}
	jd, err := readUpload(c, FieldJobDescription, maxUploadBytes)
	if err != nil {
		return AnalyzeRequest{}, err
	}
	return AnalyzeRequest{Resume: resume, JobDescription: jd}, nil
}

func readUpload(c *gin.Context, field string, maxUploadBytes int64) (Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return Upload{}, &UploadTooLargeError{Field: field, Limit: maxUploadBytes}
		}
		return Upload{}, &ValidationError{Field: field, Reason: field + " file is required"}
	}
	if maxUploadBytes > 0 && fileHeader.Size > maxUploadBytes {
		return Upload{}, &UploadTooLargeError{Field: field, Limit: maxUploadBytes}
	}

	data, err := readFileHeader(fileHeader, maxUploadBytes)
	if err != nil {
		return Upload{}, &ValidationError{Field: field, Reason: "unable to read " + field + " file"}
	}
	if maxUploadBytes > 0 && int64(len(data)) > maxUploadBytes {
		return Upload{}, &UploadTooLargeError{Field: field, Limit: maxUploadBytes}
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		fileName = field
	}
	return Upload{
		Field:       field,
		FileName:    fileName,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileHeader(fh *multipart.FileHeader, maxUploadBytes int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if maxUploadBytes > 0 {
		r = io.LimitReader(f, maxUploadBytes+1)
	}
	return io.ReadAll(r)
}
