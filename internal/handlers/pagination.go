package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxPageLimit = 100

var errInvalidPagination = errors.New("invalid pagination params")

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = min(l, maxPageLimit)
	}

	return page, limit, nil
}

// applyListWindow narrows a catalog listing. ?latest=N returns the N newest
// entries; page and limit are only applied when both are present. Without
// either the whole collection is returned.
func applyListWindow(c *gin.Context, opts *options.FindOptions) error {
	if latest := strings.TrimSpace(c.Query("latest")); latest != "" {
		n, err := strconv.ParseInt(latest, 10, 64)
		if err != nil || n < 1 {
			return errInvalidPagination
		}
		opts.SetLimit(n)
		return nil
	}

	pageStr, limitStr := c.Query("page"), c.Query("limit")
	if pageStr == "" || limitStr == "" {
		return nil
	}

	page, limit, err := parsePaginationParams(pageStr, limitStr)
	if err != nil {
		return err
	}
	opts.SetSkip((page - 1) * limit).SetLimit(limit)
	return nil
}
