package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireJSON(ok)

	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{"json body", `{"a":1}`, "application/json", http.StatusOK},
		{"json with charset", `{"a":1}`, "application/json; charset=utf-8", http.StatusOK},
		{"form body", "a=1", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"body without content type", `{"a":1}`, "", http.StatusUnsupportedMediaType},
		{"no body", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(tt.body))
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
