package monitor

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// RegisterMonitorPage serves a minimal HTML status page plus the JSON it
// polls. Not part of the versioned API surface.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"environment": os.Getenv("ENVIRONMENT"),
			"uptime":      time.Since(startedAt).Round(time.Second).String(),
			"goroutines":  runtime.NumGoroutine(),
			"go_version":  runtime.Version(),
		})
	})

	router.GET("/monitor", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Coaching Platform Monitor</title>
  <style>
    body { background: #0f0f0f; color: #e0e0e0; font-family: sans-serif; padding: 40px; }
    h1 { color: #667eea; }
    pre { background: #1a1a2e; padding: 20px; border-radius: 8px; }
  </style>
</head>
<body>
  <h1>Coaching Platform API</h1>
  <pre id="status">loading...</pre>
  <script>
    async function refresh() {
      const res = await fetch('/monitor/status');
      document.getElementById('status').textContent = JSON.stringify(await res.json(), null, 2);
    }
    refresh();
    setInterval(refresh, 5000);
  </script>
</body>
</html>`))
	})
}
