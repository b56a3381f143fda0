package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	formbody "github.com/reoring/formbody"
	"github.com/reoring/formbody/middleware"
)

// DecodeBody decodes the request body with opt before the handler runs. On a
// recognized content type the settled Result (decoded or skipped) is stored
// in the request context; limit violations short-circuit with 400 and a JSON
// violations payload, transport errors with 400 and an error message.
func DecodeBody(opt formbody.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := formbody.Decode(c.Request().Context(), c.Request(), opt)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			if !res.OK() && res.Handled() {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(res.Violations()))
			}
			ctx := middleware.ContextWithResult(c.Request().Context(), res)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetResult fetches the decoded body Result from echo.Context.
func GetResult(c echo.Context) (formbody.Result, bool) {
	return middleware.ResultFromContext(c.Request().Context())
}
