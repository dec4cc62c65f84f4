package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/query"
	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type fakeAuth map[string]*entity.User

func (f fakeAuth) Identify(_ context.Context, token string) (*entity.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, apperror.Unauthenticated("Not authorized to access this resource")
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func newEngine(t *testing.T) (*gin.Engine, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestID(), Recovery(logger), ErrorHandler(logger))
	return r, hook
}

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body envelope
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestProtect(t *testing.T) {
	jane := &entity.User{ID: "u1", Role: entity.RoleUser}
	john := &entity.User{ID: "u2", Role: entity.RolePublisher}
	auth := fakeAuth{"jane-token": jane, "john-token": john}

	r, _ := newEngine(t)
	r.GET("/me", Protect(auth), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).ID+":"+c.GetString(CtxUserID))
	})

	t.Run("bearer beats cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer john-token")
		req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: "jane-token"})
		w, _ := do(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u2:u2", w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: "jane-token"})
		w, _ := do(r, req)
		assert.Equal(t, "u1:u1", w.Body.String())
	})

	for name, header := range map[string]string{"missing": "", "invalid": "Bearer nope", "not bearer": "Basic jane-token"} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w, body := do(r, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, body.Success)
			assert.Equal(t, "Not authorized to access this resource", body.Error)
		})
	}
}

func TestAllowed(t *testing.T) {
	allowed := []entity.Role{entity.RolePublisher, entity.RoleAdmin}
	assert.True(t, Allowed(entity.RolePublisher, allowed))
	assert.True(t, Allowed(entity.RoleAdmin, allowed))
	assert.False(t, Allowed(entity.RoleUser, allowed))
	assert.False(t, Allowed(entity.RoleUser, nil))
}

func TestAuthorize(t *testing.T) {
	auth := fakeAuth{
		"user":  {ID: "u1", Role: entity.RoleUser},
		"admin": {ID: "u2", Role: entity.RoleAdmin},
	}
	r, _ := newEngine(t)
	r.POST("/bootcamps", Protect(auth), Authorize(entity.RolePublisher, entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.POST("/unprotected", Authorize(entity.RoleAdmin), func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodPost, "/bootcamps", nil)
	req.Header.Set("Authorization", "Bearer user")
	w, body := do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User role user is not authorized to access this resource", body.Error)

	req = httptest.NewRequest(http.MethodPost, "/bootcamps", nil)
	req.Header.Set("Authorization", "Bearer admin")
	w, _ = do(r, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(r, httptest.NewRequest(http.MethodPost, "/unprotected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeStore struct {
	total int64
	docs  []query.Document
	err   error
	got   query.Query
}

func (s *fakeStore) Count(context.Context, map[string]any) (int64, error) { return s.total, s.err }

func (s *fakeStore) Find(_ context.Context, q query.Query) ([]query.Document, error) {
	s.got = q
	return s.docs, s.err
}

func TestAdvancedResults(t *testing.T) {
	store := &fakeStore{total: 5, docs: []query.Document{{"name": "C"}, {"name": "D"}}}
	pop := query.Populate{Path: "courses", Collection: "courses", LocalField: "id", ForeignField: "bootcamp", Many: true}

	r, _ := newEngine(t)
	r.GET("/bootcamps", AdvancedResults(store, pop), func(c *gin.Context) {
		c.JSON(http.StatusOK, Results(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bootcamps?select=name,description&sort=name&page=2&limit=2&housing=true", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res query.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Count)
	require.NotNil(t, res.Pagination.Next)
	require.NotNil(t, res.Pagination.Previous)
	assert.Equal(t, query.PageRef{Page: 3, Limit: 2}, *res.Pagination.Next)
	assert.Equal(t, query.PageRef{Page: 1, Limit: 2}, *res.Pagination.Previous)

	assert.Equal(t, []string{"name", "description"}, store.got.Select)
	assert.Equal(t, []query.Populate{pop}, store.got.Populate)
	assert.Equal(t, map[string]any{"housing": "true"}, store.got.Filter)
}

func TestAdvancedResultsStoreError(t *testing.T) {
	store := &fakeStore{err: apperror.Validation("Unknown field \"nope\" in select")}

	r, _ := newEngine(t)
	r.GET("/bootcamps", AdvancedResults(store), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	w, body := do(r, httptest.NewRequest(http.MethodGet, "/bootcamps?select=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Unknown field "nope" in select`, body.Error)
}

type bindTarget struct {
	Email string `json:"email" binding:"required,email"`
}

func TestTranslate(t *testing.T) {
	v := validator.New()
	verr := v.Struct(struct {
		Name string `validate:"required"`
	}{})

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", apperror.NotFound("No course with the id of 1"), 404, "No course with the id of 1"},
		{"not owner", apperror.NotOwner("nope"), 401, "nope"},
		{"upstream", apperror.Upstream(errors.New("smtp down"), "Email could not be sent"), 500, "Email could not be sent"},
		{"unhandled", apperror.Unhandled(errors.New("disk")), 500, "Server Error"},
		{"duplicate", &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"}, 400, "Duplicate field value entered: email"},
		{"duplicate wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bootcamps_name_key"}), 400, "Duplicate field value entered: name"},
		{"bad id", &pgconn.PgError{Code: "22P02"}, 404, "Resource not found"},
		{"missing parent", &pgconn.PgError{Code: "23503"}, 404, "Resource not found"},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "title"}, 400, "title is required"},
		{"check", &pgconn.PgError{Code: "23514", TableName: "reviews", ConstraintName: "reviews_rating_check"}, 400, "Invalid value for rating"},
		{"other pg", &pgconn.PgError{Code: "40001"}, 500, "Server Error"},
		{"validation", verr, 400, "Name is required"},
		{"plain", errors.New("boom"), 500, "Server Error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := Translate(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestErrorHandlerBindingErrors(t *testing.T) {
	r, _ := newEngine(t)
	r.POST("/register", func(c *gin.Context) {
		var in bindTarget
		if err := c.ShouldBindJSON(&in); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusCreated)
	})

	cases := map[string]string{
		`{"email":"nope"}`: "email must be a valid email",
		`{"email":`:        "payload invalid json",
		`{"email" "x"}`:    "payload invalid json",
		``:                 "Request body is required",
	}
	for payload, msg := range cases {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w, body := do(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
		assert.Equal(t, msg, body.Error, payload)
	}
}

func TestErrorHandlerLogsServerErrors(t *testing.T) {
	r, hook := newEngine(t)
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(errors.New("db gone")) })
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.NotFound("gone")) })

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	w, body := do(r, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", body.Error)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, w.Header().Get(HeaderRequestID), entry.Data["request_id"])
	assert.Equal(t, "/fail", entry.Data["path"])
	assert.Equal(t, "db gone", entry.Data["error"])

	hook.Reset()
	w, _ = do(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, hook.AllEntries())
}

func TestRecovery(t *testing.T) {
	r, hook := newEngine(t)
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w, body := do(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", body.Error)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "kaboom", hook.LastEntry().Data["error"])
}

func TestRequestID(t *testing.T) {
	r, _ := newEngine(t)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w, _ := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	const incoming = "0b5a0a8e-4a55-4bde-8a7e-6c58a8f1d2a1"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	w, _ = do(r, req)
	assert.Equal(t, incoming, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w, _ = do(r, req)
	assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
}

func TestRealIPAndAllowPrivateIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", OnlyIf(AllowPrivateIP()), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIP)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "10.1.2.3")
	w, _ := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10.1.2.3", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "8.8.8.8, 10.0.0.1")
	w, _ = do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/nil", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) {})

	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = down.Close() })
	r.GET("/down", RateLimit(down, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) {})

	for i := 0; i < 3; i++ {
		w, _ := do(r, httptest.NewRequest(http.MethodGet, "/nil", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = do(r, httptest.NewRequest(http.MethodGet, "/down", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitKeys(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
	c.Set(CtxRealIP, "1.2.3.4")

	assert.Equal(t, "rl:ip:1.2.3.4", KeyByIP()(c))
	assert.Equal(t, "rl:path:/api/v1/auth/login:ip:1.2.3.4", KeyByIPAndPath()(c))
	assert.Equal(t, "rl:user:anon:ip:1.2.3.4", KeyByUserID()(c))

	c.Set(CtxUserID, "u1")
	assert.Equal(t, "rl:user:u1", KeyByUserID()(c))
}
