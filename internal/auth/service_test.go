package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/canvasboard/internal/store"
)

func newTestService(ttl time.Duration) *Service {
	return NewService(store.NewMemory(0), "test-secret", Options{TokenTTL: ttl, BcryptCost: bcrypt.MinCost})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Hour)

	reg, err := svc.Register(ctx, "ada@example.com", "correct horse", "Ada")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.ID == "" || reg.Token == "" {
		t.Fatalf("Register result = %+v", reg)
	}

	if _, err := svc.Register(ctx, "ada@example.com", "another pass", "Ada 2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register err = %v, want ErrEmailTaken", err)
	}

	login, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("login user = %s, want %s", login.User.ID, reg.User.ID)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}

	userID, err := svc.ValidateToken(login.Token)
	if err != nil || userID != reg.User.ID {
		t.Errorf("ValidateToken = %q, %v", userID, err)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := newTestService(time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user_1"})
	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := map[string]struct {
		tok *jwt.Token
		key string
	}{
		"expired":   {expired, "test-secret"},
		"no expiry": {noExp, "test-secret"},
		"wrong key": {otherKey, "other-secret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			signed, err := tc.tok.SignedString([]byte(tc.key))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := svc.ValidateToken(signed); err == nil {
				t.Error("expected token to be rejected")
			}
		})
	}

	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Error("expected garbage token to be rejected")
	}
}

func TestSessionFor(t *testing.T) {
	svc := newTestService(time.Hour)
	reg, err := svc.Register(context.Background(), "bob@example.com", "password1", "Bob")
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/ws/canvas/board?token="+reg.Token, nil)
	sess := svc.SessionFor(r, "board")
	if !sess.Authenticated || sess.UserID != reg.User.ID || sess.ContextID != "board" {
		t.Errorf("query token session = %+v", sess)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws/canvas/board", nil)
	r.Header.Set("Authorization", "Bearer broken")
	if sess := svc.SessionFor(r, "board"); sess.Authenticated {
		t.Error("invalid token produced an authenticated session")
	}
}

func TestHandler(t *testing.T) {
	svc := newTestService(time.Hour)
	h := NewHandler(svc)

	post := func(handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
		data, _ := json.Marshal(body)
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data)))
		return rec
	}

	if rec := post(h.Register, map[string]string{"email": "c@example.com", "password": "short", "displayName": "C"}); rec.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", rec.Code)
	}

	rec := post(h.Register, map[string]string{"email": "c@example.com", "password": "long enough", "displayName": "C"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}
	var result AuthResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}

	if rec := post(h.Register, map[string]string{"email": "c@example.com", "password": "long enough", "displayName": "C"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}
	if rec := post(h.Login, map[string]string{"email": "c@example.com", "password": "nope nope"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	me := svc.AuthMiddleware(http.HandlerFunc(h.Me))
	rec = httptest.NewRecorder()
	me.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without token status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec = httptest.NewRecorder()
	me.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body)
	}
	var user User
	json.NewDecoder(rec.Body).Decode(&user)
	if user.Email != "c@example.com" {
		t.Errorf("me = %+v", user)
	}
}
