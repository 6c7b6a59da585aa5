package runlog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/respond"
)

// Handler serves the recent-runs listing.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/runs", h.list)
}

type runView struct {
	Run
	Age string `json:"age"`
}

func (h *Handler) list(c *gin.Context) {
	limit := DefaultListLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", gin.H{"limit": raw})
			return
		}
		limit = parsed
	}

	runs, err := h.Repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "could not list runs", nil)
		return
	}
	out := make([]runView, 0, len(runs))
	for _, run := range runs {
		out = append(out, runView{Run: run, Age: humanize.Time(run.CreatedAt)})
	}
	respond.OK(c, gin.H{"runs": out})
}
