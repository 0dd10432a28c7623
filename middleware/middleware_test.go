package middleware

import (
	"net/http"
	"net/http/httptest"
	c "rovify-backend/context"
	"rovify-backend/session"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCorrelationIDHeaderGeneratesID(t *testing.T) {
	var seen string
	h := SetCorrelationIDHeader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = c.GetContextValue(r.Context(), c.ContextKeyCorrelationID)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(correlationHeader))
}

func TestSetCorrelationIDHeaderKeepsIncomingID(t *testing.T) {
	var seen string
	h := SetCorrelationIDHeader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = c.GetContextValue(r.Context(), c.ContextKeyCorrelationID)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlationHeader, "42.1700000000")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "42.1700000000", seen)
}

func TestPanicHandlerReturns500(t *testing.T) {
	h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	issuer := session.NewIssuer("secret", time.Hour)
	token, err := issuer.Issue("user-7", "", false)
	require.NoError(t, err)

	var userID string
	h := Authenticate(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = c.UserID(r.Context())
	}))

	cases := []struct {
		name   string
		header string
		code   int
		user   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid token", "Bearer " + token, http.StatusOK, "user-7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.user, userID)
		})
	}
}

func TestIdentifyLetsAnonymousRequestsThrough(t *testing.T) {
	issuer := session.NewIssuer("secret", time.Hour)
	token, err := issuer.Issue("user-9", "", false)
	require.NoError(t, err)

	var userID string
	h := Identify(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = c.UserID(r.Context())
	}))

	for header, want := range map[string]string{"": "", "Bearer nope": "", "Bearer " + token: "user-9"} {
		userID = ""
		req := httptest.NewRequest(http.MethodGet, "/api/events/1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, userID)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://rovify.io/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
		req.Header.Set("Origin", "https://rovify.io")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://rovify.io", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestResponseTimeLoggingKeepsStatus(t *testing.T) {
	h := ResponseTimeLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
