package web

import (
	"embed"         // Embedded template assets
	"html/template" // HTML templating
	"net/http"      // HTTP status codes
	"time"          // Poll interval duration

	"github.com/gin-gonic/gin" // Gin web framework
)

//go:embed templates/*.html
var templates embed.FS

// Register parses the embedded templates into the router and mounts
// the counter page at /.
func Register(r *gin.Engine, pollInterval time.Duration) {
	tmpl := template.Must(template.ParseFS(templates, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)
	r.GET("/", IndexHandler(pollInterval))
}

// IndexHandler serves the single-page counter UI. The page handles
// login, quick-add, custom amounts, reset confirmation and switch-user,
// and re-fetches the total on a fixed timer.
func IndexHandler(pollInterval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"PollMillis": pollInterval.Milliseconds(), // Timer period for the sync poll
		})
	}
}
