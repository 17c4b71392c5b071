package tracing

import (
	"github.com/gin-gonic/gin"
)

const (
	TraceIDHeader = "X-Trace-ID"
	SpanIDHeader  = "X-Span-ID"
)

// HTTPMiddleware opens a span per request, continuing an inbound
// X-Trace-ID / X-Span-ID pair when present.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithParent(c.Request.Context(),
			TraceID(c.GetHeader(TraceIDHeader)),
			SpanID(c.GetHeader(SpanIDHeader)))

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.Start(ctx, c.Request.Method+" "+name)
		c.Request = c.Request.WithContext(ctx)

		c.Header(TraceIDHeader, string(span.TraceID))
		c.Header(SpanIDHeader, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		span.Finish()
	}
}
