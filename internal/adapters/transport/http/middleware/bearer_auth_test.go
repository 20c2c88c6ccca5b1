package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type resolverStub struct {
	user model.User
	err  error
	seen string
}

func (r *resolverStub) ResolveAccess(_ context.Context, token string) (model.User, error) {
	r.seen = token
	return r.user, r.err
}

func protectedRouter(res AccessResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth(res, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"login": u.Login})
	})
	return r
}

func call(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBearerAuth_OK(t *testing.T) {
	res := &resolverStub{user: model.User{ID: uuid.New(), Login: "alice"}}
	w := call(protectedRouter(res), "Bearer abc.def.ghi")

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if res.seen != "abc.def.ghi" {
		t.Fatalf("resolver got %q", res.seen)
	}
}

func TestBearerAuth_Rejects(t *testing.T) {
	invalid := &resolverStub{err: customErrors.NewInvalidSession(customErrors.NewTokenError(errors.New("expired")))}

	cases := map[string]struct {
		res  AccessResolver
		auth string
	}{
		"no header":     {&resolverStub{}, ""},
		"wrong scheme":  {&resolverStub{}, "Basic dXNlcjpwdw=="},
		"empty token":   {&resolverStub{}, "Bearer "},
		"invalid token": {invalid, "Bearer x"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := call(protectedRouter(tc.res), tc.auth)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("want 401, got %d", w.Code)
			}
			if w.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatal("WWW-Authenticate header missing")
			}
			var body map[string]string
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["detail"] != CredentialsDetail {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestBearerAuth_StoreError(t *testing.T) {
	res := &resolverStub{err: customErrors.WrapInternal(errors.New("db down"), "resolve")}
	w := call(protectedRouter(res), "Bearer x")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
}
