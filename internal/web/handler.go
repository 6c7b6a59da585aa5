package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/report"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("web").ParseFS(templateFS, "templates/*.html"))
}

// Handler serves the upload form and the rendered report page.
type Handler struct {
	Svc            analyses.Analyzer
	MaxUploadBytes int64
	PoweredBy      string
}

// NewHandler constructs a Handler.
func NewHandler(svc analyses.Analyzer, maxUploadBytes int64, poweredBy string) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes, PoweredBy: poweredBy}
}

// RegisterRoutes attaches the page routes. Extra handlers run before POST /report only.
func (h *Handler) RegisterRoutes(r gin.IRoutes, reportMiddleware ...gin.HandlerFunc) {
	r.GET("/", h.index)
	report := append(append([]gin.HandlerFunc{}, reportMiddleware...), h.report)
	r.POST("/report", report...)
}

func (h *Handler) index(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "")
}

func (h *Handler) renderForm(c *gin.Context, status int, message string) {
	c.HTML(status, "index.html", gin.H{
		"Error":     message,
		"MaxUpload": humanize.IBytes(uint64(h.MaxUploadBytes)),
		"PoweredBy": h.PoweredBy,
	})
}

func (h *Handler) report(c *gin.Context) {
	requestID := middleware.RequestIDFromContext(c)
	req, err := analyses.ReadUploads(c, h.MaxUploadBytes)
	if err != nil {
		failure := analyses.Classify(err)
		h.renderForm(c, failure.Status, failure.Message)
		return
	}
	req.RequestID = requestID

	result, err := h.Svc.Analyze(analyses.WithRequestID(c.Request.Context(), requestID), req)
	if err != nil {
		failure := analyses.Classify(err)
		telemetry.Warn("web.report_failed", map[string]any{
			"request_id": requestID,
			"status":     failure.Status,
			"error_kind": failure.Kind,
		})
		h.renderForm(c, failure.Status, failure.Message)
		return
	}
	middleware.SetRunID(c, result.RunID)

	body, err := report.RenderHTML(result.Markdown)
	if err != nil {
		telemetry.Error("web.render_failed", map[string]any{
			"request_id": requestID,
			"run_id":     result.RunID,
			"error":      err,
		})
		h.renderForm(c, http.StatusInternalServerError, "Unexpected server error")
		return
	}

	c.HTML(http.StatusOK, "report.html", gin.H{
		"Body":      body,
		"ChartURL":  analyses.ChartURL(result.ChartKey),
		"RunID":     result.RunID,
		"Truncated": result.Resume.Truncated || result.JobDescription.Truncated,
	})
}
