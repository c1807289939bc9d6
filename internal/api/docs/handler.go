package docs

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Handler lists the routes registered on the engine, read at request time
// so it always matches what is served.
type Handler struct {
	title   string
	version string
	routes  func() gin.RoutesInfo
}

func NewHandler(title, version string, routes func() gin.RoutesInfo) *Handler {
	return &Handler{title: title, version: version, routes: routes}
}

func (h *Handler) Index(c *gin.Context) {
	info := h.routes()
	out := make([]Route, 0, len(info))
	for _, r := range info {
		out = append(out, Route{Method: r.Method, Path: r.Path})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})

	c.JSON(http.StatusOK, gin.H{
		"title":   h.title,
		"version": h.version,
		"routes":  out,
	})
}
