package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *MemoryTokens) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	tokens := NewMemoryTokens(token)
	return &Client{BaseURL: ts.URL, HTTPClient: ts.Client(), Tokens: tokens}, tokens
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	t.Parallel()

	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"success": true, "user": {"id": 1, "username": "alice"}}`)
	}, "tok-123")

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Bearer tok-123", got)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	t.Parallel()

	var present bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, `{"success": true, "status": "healthy", "model_loaded": true}`)
	}, "")

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
	assert.True(t, status.ModelLoaded)
}

func TestUnauthorizedClearsTokenFromAnyEndpoint(t *testing.T) {
	t.Parallel()

	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success": false, "error": "Token has expired"}`)
	}, "stale")
	var hooks int32
	c.OnUnauthorized(func() { atomic.AddInt32(&hooks, 1) })

	_, err := c.TodayMeals(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Token has expired", UserMessage(err, "fallback"))

	token, _ := tokens.Token()
	assert.Empty(t, token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hooks))
}

func TestApplicationErrorKeepsServerMessage(t *testing.T) {
	t.Parallel()

	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success": false, "error": "Username already exists"}`)
	}, "keep")

	_, err := c.Register(context.Background(), "alice", "secret1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username already exists", UserMessage(err, "Registration failed"))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	token, _ := tokens.Token()
	assert.Equal(t, "keep", token)
}

func TestSuccessFalseOnOKIsApplicationError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success": false, "error": "Invalid profile"}`)
	}, "t")

	_, err := c.Conversations(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid profile", apiErr.Message)
}

func TestTransportErrorUsesConnectMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := &Client{BaseURL: url, Tokens: NewMemoryTokens("t")}
	_, err := c.Login(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, ConnectMessage, UserMessage(err, "Login failed"))
}

func TestMalformedSuccessBodyIsDecodeError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>oops</html>`)
	}, "")

	_, err := c.Conversations(context.Background())
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestLoginRequiresTokenAndUser(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success": true, "user": {"id": 1, "username": "alice"}}`)
	}, "")

	_, err := c.Login(context.Background(), "alice", "secret1")
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestSendChatOmitsConversationIDForNewConversation(t *testing.T) {
	t.Parallel()

	var bodies []map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeJSON(w, http.StatusOK, `{"success": true, "response": "Eat more greens.", "conversation_id": 9}`)
	}, "t")

	reply, err := c.SendChat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), reply.ConversationID)

	id := int64(9)
	_, err = c.SendChat(context.Background(), "again", &id)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	_, hasID := bodies[0]["conversation_id"]
	assert.False(t, hasID)
	assert.Equal(t, float64(9), bodies[1]["conversation_id"])
}

func TestPredictSendsMultipartImageField(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "meal.jpg", hdr.Filename)
		assert.Equal(t, "fake-jpeg", string(data))
		writeJSON(w, http.StatusOK, `{"success": true, "food_name": "Ramen", "confidence": 35, "low_confidence": true, "llm_advice": "Watch the broth sodium."}`)
	}, "")

	result, raw, err := c.Predict(context.Background(), "meal.jpg", strings.NewReader("fake-jpeg"))
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.True(t, result.LowConfidence())
	assert.Equal(t, 35.0, result.Confidence)
}

func TestValidateImage(t *testing.T) {
	t.Parallel()

	var validationErr *ValidationError
	require.ErrorAs(t, ValidateImage("notes.gif", 10), &validationErr)
	assert.Equal(t, "File too large. Maximum size: 16MB", ValidateImage("big.png", MaxImageBytes+1).Error())
	assert.Error(t, ValidateImage("empty.png", 0))
	assert.NoError(t, ValidateImage("ok.JPEG", 1024))
}

func TestAlternativesEscapesFoodName(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alternatives/french%20fries", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, `{"success": true, "alternatives": "Try baked sweet potato wedges."}`)
	}, "")

	alts, err := c.Alternatives(context.Background(), "french fries")
	require.NoError(t, err)
	assert.Equal(t, "Try baked sweet potato wedges.", alts.Text)
}

func TestMealStatsQuery(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meals/stats", r.URL.Path)
		assert.Equal(t, "daily", r.URL.Query().Get("period"))
		assert.Equal(t, "2026-10-01", r.URL.Query().Get("date"))
		writeJSON(w, http.StatusOK, `{"success": true, "stats": {"period": "daily", "total_meals": 3, "days_with_meals": 1, "averages": {"calories": 1800}, "daily_data": []}}`)
	}, "")

	stats, err := c.MealStats(context.Background(), "daily", "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalMeals)
	assert.Equal(t, 1800.0, stats.Averages.Calories)
}

func TestBaseURLDefaultsAndTrims(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultBaseURL, (&Client{}).baseURL())
	assert.Equal(t, "http://example.test/api", (&Client{BaseURL: " http://example.test/api/ "}).baseURL())
}
