package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guideline-tutor-go/pkg/token"
)

func TestCreateSession_IssuesVerifiableToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtManager := token.NewJWTManager("test-secret", 7)

	r := gin.New()
	r.POST("/session", NewSessionHandler(jwtManager).CreateSession)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/session", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.UserID)
	require.NotEmpty(t, resp.Token)

	// The issued token resolves back to the same userId.
	claims, err := jwtManager.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestCreateSession_UserIDsAreUnique(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/session", NewSessionHandler(token.NewJWTManager("test-secret", 7)).CreateSession)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/session", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			UserID string `json:"userId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, seen[resp.UserID], "session ids must not repeat")
		seen[resp.UserID] = true
	}
}
