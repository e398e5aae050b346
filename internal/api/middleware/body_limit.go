package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aptcare/backend/pkg/response"
)

// BodyLimit caps the request body at maxBytes; multipart uploads
// (request images, report attachments, contract PDFs) get uploadMaxBytes.
func BodyLimit(maxBytes, uploadMaxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") && uploadMaxBytes > limit {
			limit = uploadMaxBytes
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Dữ liệu gửi lên vượt quá dung lượng cho phép")
				return
			}
		}
	}
}
