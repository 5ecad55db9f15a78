package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures how long a distributed message takes to settle
type Timer struct {
	start       time.Time
	metrics     *Metrics
	interpreter string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, interpreter string) *Timer {
	return &Timer{
		start:       time.Now(),
		metrics:     metrics,
		interpreter: interpreter,
	}
}

// Stop stops the timer and records the outcome
func (t *Timer) Stop(status string) {
	t.metrics.RecordMessage(t.interpreter, status, time.Since(t.start))
}
