package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	formbody "github.com/reoring/formbody"
	"github.com/reoring/formbody/middleware"
)

// DecodeBody decodes the request body with opt, stores the settled Result in
// the request context, and on limit violations aborts with 400 and a JSON
// violations payload.
func DecodeBody(opt formbody.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := formbody.Decode(c.Request.Context(), c.Request, opt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if !res.OK() && res.Handled() {
			c.JSON(http.StatusBadRequest, middleware.ErrorPayload(res.Violations()))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithResult(c.Request.Context(), res))
		c.Next()
	}
}

// GetResult fetches the decoded body Result from gin.Context.
func GetResult(c *gin.Context) (formbody.Result, bool) {
	return middleware.ResultFromContext(c.Request.Context())
}
