package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guideline-tutor-go/internal/middleware"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/service"
	"guideline-tutor-go/pkg/llm"
	"guideline-tutor-go/pkg/token"
)

// stubTutor returns a canned reply or error and records the resolved user.
type stubTutor struct {
	reply     string
	err       error
	gotUserID string
	gotMode   string
}

func (s *stubTutor) Chat(_ context.Context, userID string, _ []model.ChatMessage, mode string) (model.ChatMessage, error) {
	s.gotUserID = userID
	s.gotMode = mode
	if s.err != nil {
		return model.ChatMessage{}, s.err
	}
	return model.ChatMessage{Role: "assistant", Content: s.reply}, nil
}

func newChatRouter(tutor service.TutorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	jwtManager := token.NewJWTManager("test-secret", 7)
	r.Use(middleware.Identity(jwtManager))
	r.POST("/chat", NewChatHandler(tutor).Chat)
	return r
}

func postJSON(r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChat_Success(t *testing.T) {
	tutor := &stubTutor{reply: "What would you check first?"}
	r := newChatRouter(tutor)

	w := postJSON(r, "/chat", gin.H{
		"userId":   "u1",
		"messages": []gin.H{{"role": "user", "content": "How do I manage this?"}},
		"mode":     "questions",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	// The reply is a full message object, not a bare string.
	var resp struct {
		Reply model.ChatMessage `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "assistant", resp.Reply.Role)
	assert.Equal(t, "What would you check first?", resp.Reply.Content)

	assert.Equal(t, "u1", tutor.gotUserID)
	assert.Equal(t, "questions", tutor.gotMode)
}

func TestChat_HeaderIdentityWinsOverBody(t *testing.T) {
	tutor := &stubTutor{reply: "ok"}
	r := newChatRouter(tutor)

	w := postJSON(r, "/chat", gin.H{
		"userId":   "body-user",
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, map[string]string{"X-User-Id": "header-user"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header-user", tutor.gotUserID)
}

func TestChat_SessionTokenIdentity(t *testing.T) {
	tutor := &stubTutor{reply: "ok"}
	r := newChatRouter(tutor)

	jwtManager := token.NewJWTManager("test-secret", 7)
	sessionToken, err := jwtManager.GenerateSessionToken("session-user")
	require.NoError(t, err)

	w := postJSON(r, "/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, map[string]string{"Authorization": "Bearer " + sessionToken})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-user", tutor.gotUserID)
}

func TestChat_InvalidSessionTokenRejected(t *testing.T) {
	r := newChatRouter(&stubTutor{reply: "ok"})

	w := postJSON(r, "/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, map[string]string{"Authorization": "Bearer not-a-token"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChat_MissingIdentity(t *testing.T) {
	r := newChatRouter(&stubTutor{reply: "ok"})

	w := postJSON(r, "/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing user identity")
}

func TestChat_MissingMessages(t *testing.T) {
	r := newChatRouter(&stubTutor{reply: "ok"})

	w := postJSON(r, "/chat", gin.H{"userId": "u1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_InvalidBody(t *testing.T) {
	r := newChatRouter(&stubTutor{reply: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_NoKnowledgeMapsTo400WithUploadHint(t *testing.T) {
	r := newChatRouter(&stubTutor{err: service.ErrNoKnowledge})

	w := postJSON(r, "/chat", gin.H{
		"userId":   "u1",
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "upload PDFs first")
}

func TestChat_UnconfiguredLLMMapsTo503(t *testing.T) {
	r := newChatRouter(&stubTutor{err: llm.ErrNotConfigured})

	w := postJSON(r, "/chat", gin.H{
		"userId":   "u1",
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChat_UpstreamErrorMapsToGeneric500(t *testing.T) {
	r := newChatRouter(&stubTutor{err: assert.AnError})

	w := postJSON(r, "/chat", gin.H{
		"userId":   "u1",
		"messages": []gin.H{{"role": "user", "content": "q"}},
	}, nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// Upstream details never leak to the client.
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
