package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodstore/internal/orders"
)

func TestWriteOrderErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{&orders.ValidationError{Message: "Invalid status value"}, http.StatusBadRequest},
		{errors.Wrap(orders.ErrNotFound, "find"), http.StatusNotFound},
		{orders.ErrForbidden, http.StatusForbidden},
		{orders.ErrDuplicateSubmission, http.StatusConflict},
		{errors.New("socket closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeOrderError(c, "test", "Something failed", tt.err)
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"success":false`)
	}
}

func TestHandlePanicReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		defer handlePanic(c, "GET /boom")
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page)
	assert.Equal(t, int64(20), limit)

	page, limit, err = parsePaginationParams("3", "500")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page)
	assert.Equal(t, int64(maxPageLimit), limit)

	for _, bad := range [][2]string{{"0", "10"}, {"x", "10"}, {"1", "-2"}} {
		_, _, err := parsePaginationParams(bad[0], bad[1])
		assert.ErrorIs(t, err, errInvalidPagination)
	}
}

func TestApplyListWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	window := func(query string) (*options.FindOptions, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/products?"+query, nil)
		opts := options.Find()
		return opts, applyListWindow(c, opts)
	}

	opts, err := window("latest=5")
	require.NoError(t, err)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.Nil(t, opts.Skip)

	opts, err = window("page=2&limit=10")
	require.NoError(t, err)
	assert.Equal(t, int64(10), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)

	opts, err = window("page=2")
	require.NoError(t, err)
	assert.Nil(t, opts.Limit)

	_, err = window("latest=zero")
	assert.ErrorIs(t, err, errInvalidPagination)
}

func TestNormalizeCategories(t *testing.T) {
	got := normalizeCategories([]string{" Grill", "", "Grill", "Drinks "})
	assert.Equal(t, []string{"Grill", "Drinks"}, []string(got))
}

func TestProductImageKeepsAbsoluteURLs(t *testing.T) {
	assert.Equal(t, "https://img.example/a.png", productImage(" https://img.example/a.png "))
	assert.Empty(t, productImage("local/file.png"))
}
