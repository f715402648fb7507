package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestListReportsFilterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(nil, nil, nil)

	router := gin.New()
	router.GET("/reports", h.ListReports)

	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "?status=bogus"},
		{"unknown reason", "?reason=bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/reports"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}
