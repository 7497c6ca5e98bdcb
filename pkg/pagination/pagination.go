package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds the page and limit of a list request
type Params struct {
	Page  int
	Limit int
}

// Parse reads ?page= and ?limit=. Missing or non-positive values fall back to
// the defaults; limit is capped at MaxLimit.
func Parse(c *gin.Context) Params {
	return Params{
		Page:  positive(c.Query("page"), DefaultPage),
		Limit: min(positive(c.Query("limit"), DefaultLimit), MaxLimit),
	}
}

func positive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
