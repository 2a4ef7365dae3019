package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamOhrenberg/AboutSamuel/internal/pkg/jwtutil"
)

func TestBearerAuthRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", BearerAuth("secret"), RequireRole(jwtutil.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSubjectKey))
	})

	admin, err := jwtutil.GenerateToken("secret", time.Hour, "owner", jwtutil.RoleAdmin)
	require.NoError(t, err)
	visitor, err := jwtutil.GenerateToken("secret", time.Hour, "someone", "visitor")
	require.NoError(t, err)
	expired, err := jwtutil.GenerateToken("secret", -time.Minute, "owner", jwtutil.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer " + visitor, want: http.StatusForbidden},
		{name: "admin", header: "Bearer " + admin, want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + admin, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "owner", w.Body.String())
			}
		})
	}
}
