// Package param holds small helpers shared by the controllers for parsing
// path and query values.
package param

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// ID parses the :id path segment as a positive int64.
func ID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func QueryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func QueryInt64(c echo.Context, name string) int64 {
	n, _ := strconv.ParseInt(c.QueryParam(name), 10, 64)
	return n
}

// QueryBool returns nil when the parameter is absent or unparsable.
func QueryBool(c echo.Context, name string) *bool {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
