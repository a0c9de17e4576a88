package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMeta(t *testing.T) {
	tests := []struct {
		limit int
		total int64
		pages int
	}{
		{10, 0, 0},
		{10, 10, 1},
		{10, 11, 2},
		{0, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pages, NewMeta(1, tt.limit, tt.total).TotalPages)
	}
}

func TestConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	Conflict(rec, "no vacant bed")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"no vacant bed"}`, rec.Body.String())
}
