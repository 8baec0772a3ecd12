package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondValidation surfaces field-keyed validation messages as a 400.
func respondValidation(c *gin.Context, message string, errs service.FieldErrors) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message, "errors": errs})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter. A missing value
// yields (nil, nil); a malformed one yields an error naming the parameter.
func queryInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &value, nil
}

func queryUint(c *gin.Context, key string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	value := uint(parsed)
	return &value, nil
}

func orderingParam(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("ordering"))
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// paginated wraps one result page in a count/next/previous/results envelope
// with absolute page URLs derived from the current request.
func paginated(c *gin.Context, total int64, page, pageSize int, results []gin.H) gin.H {
	var next, previous interface{}
	if int64(page)*int64(pageSize) < total {
		next = pageURL(c, page+1)
	}
	if page > 1 {
		previous = pageURL(c, page-1)
	}
	return gin.H{
		"count":    total,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	query := u.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()

	// 反向代理终结 TLS 时以转发头为准
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
	}
	u.Scheme = scheme
	u.Host = c.Request.Host
	return u.String()
}
