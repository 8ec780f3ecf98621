package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/acmutd/grades-api/internal/types"
	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// GradeQuerier is the read-only lookup surface the handlers need.
type GradeQuerier interface {
	Records() int
	Search(courseName string) []types.GradeRecord
	Suggest(query string) []string
	Years(courseName string) []string
	Semesters(courseName, year string) []string
	Grades(courseName, year, semester string) []types.GradeCount
}

// Handler serves the grade queries and the static client.
type Handler struct {
	queries   GradeQuerier
	publicDir string
}

// New creates a handler answering from queries and serving files from
// publicDir.
func New(queries GradeQuerier, publicDir string) *Handler {
	return &Handler{queries: queries, publicDir: publicDir}
}

// Health responds with a simple service heartbeat.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"records": h.queries.Records(),
	})
}

// Index serves the single-page client.
func (h *Handler) Index(c *gin.Context) {
	h.serveFile(c, indexFile)
}

// Assets serves any other file from the public directory.
func (h *Handler) Assets(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}
	h.serveFile(c, c.Request.URL.Path)
}

func (h *Handler) serveFile(c *gin.Context, name string) {
	// Cleaning a rooted path drops any ".." so the result stays inside publicDir.
	clean := path.Clean("/" + name)
	full := filepath.Join(h.publicDir, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}

	c.File(full)
}

// param reads a query parameter, trimmed. Absent parameters are "".
func param(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Query(name))
}
