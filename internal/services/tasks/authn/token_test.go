package authn

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/tasktrack/internal/platform/errors"
	"github.com/louisbranch/tasktrack/internal/services/tasks/domain"
)

const (
	testIssuer   = "tasktrack-auth"
	testAudience = "tasktrack-api"
)

func base64RawStd(key ed25519.PublicKey) string {
	return base64.RawStdEncoding.EncodeToString(key)
}

func newKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return public, private
}

func testConfig(key ed25519.PublicKey, now time.Time) Config {
	return Config{
		Issuer:   testIssuer,
		Audience: testAudience,
		Key:      key,
		Now:      func() time.Time { return now },
	}
}

type tokenOptions struct {
	issuer      string
	audience    string
	email       string
	authorities []string
	expiresAt   time.Time
}

func signToken(t *testing.T, private ed25519.PrivateKey, opts tokenOptions) string {
	t.Helper()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    opts.issuer,
			Subject:   opts.email,
			Audience:  jwt.ClaimStrings{opts.audience},
			ExpiresAt: jwt.NewNumericDate(opts.expiresAt),
			IssuedAt:  jwt.NewNumericDate(opts.expiresAt.Add(-time.Hour)),
		},
		Email:       opts.email,
		Authorities: opts.authorities,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(private)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerifyTokenResolvesCaller(t *testing.T) {
	public, private := newKeyPair(t)
	now := time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)

	token := signToken(t, private, tokenOptions{
		issuer:      testIssuer,
		audience:    testAudience,
		email:       "alice@example.com",
		authorities: []string{domain.AuthorityUser},
		expiresAt:   now.Add(time.Hour),
	})

	claims, err := VerifyToken(token, testConfig(public, now))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	caller := claims.Caller()
	if caller.ResolveAccessRole() != domain.AccessUser {
		t.Fatalf("access role = %v, want user", caller.ResolveAccessRole())
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	public, private := newKeyPair(t)
	_, otherPrivate := newKeyPair(t)
	now := time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)
	cfg := testConfig(public, now)

	valid := tokenOptions{
		issuer:      testIssuer,
		audience:    testAudience,
		email:       "alice@example.com",
		authorities: []string{domain.AuthorityUser},
		expiresAt:   now.Add(time.Hour),
	}

	tests := []struct {
		name  string
		token string
		want  apperrors.Code
	}{
		{
			name:  "empty token",
			token: "  ",
			want:  apperrors.CodeCredentialsMissing,
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
			want:  apperrors.CodeCredentialsInvalid,
		},
		{
			name: "wrong signing key",
			token: signToken(t, otherPrivate, valid),
			want: apperrors.CodeCredentialsInvalid,
		},
		{
			name: "issuer mismatch",
			token: signToken(t, private, func() tokenOptions {
				opts := valid
				opts.issuer = "someone-else"
				return opts
			}()),
			want: apperrors.CodeCredentialsInvalid,
		},
		{
			name: "audience mismatch",
			token: signToken(t, private, func() tokenOptions {
				opts := valid
				opts.audience = "other-api"
				return opts
			}()),
			want: apperrors.CodeCredentialsInvalid,
		},
		{
			name: "expired",
			token: signToken(t, private, func() tokenOptions {
				opts := valid
				opts.expiresAt = now.Add(-time.Minute)
				return opts
			}()),
			want: apperrors.CodeCredentialsExpired,
		},
		{
			name: "no identity",
			token: signToken(t, private, func() tokenOptions {
				opts := valid
				opts.email = ""
				return opts
			}()),
			want: apperrors.CodeCredentialsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(tt.token, cfg)
			if apperrors.CodeOf(err) != tt.want {
				t.Fatalf("error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestVerifyTokenFallsBackToSubject(t *testing.T) {
	public, private := newKeyPair(t)
	now := time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "bob@example.com",
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Authorities: []string{domain.AuthorityAdmin},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(private)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	verified, err := VerifyToken(token, testConfig(public, now))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Email != "bob@example.com" {
		t.Fatalf("email = %q, want subject fallback", verified.Email)
	}
}

func TestMiddlewareInjectsCaller(t *testing.T) {
	public, private := newKeyPair(t)
	now := time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)
	cfg := testConfig(public, now)

	var gotCaller domain.Caller
	var found bool
	handler := Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller, found = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token := signToken(t, private, tokenOptions{
		issuer:      testIssuer,
		audience:    testAudience,
		email:       "alice@example.com",
		authorities: []string{domain.AuthorityAdmin, domain.AuthorityUser},
		expiresAt:   now.Add(time.Hour),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	if !found {
		t.Fatal("caller missing from context")
	}
	if gotCaller.Email != "alice@example.com" || gotCaller.ResolveAccessRole() != domain.AccessAdmin {
		t.Fatalf("caller = %+v", gotCaller)
	}
}

func TestMiddlewareRejectsMissingAndMalformedHeaders(t *testing.T) {
	public, _ := newKeyPair(t)
	now := time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)
	handler := Middleware(testConfig(public, now))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "no header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer  ", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d", recorder.Code, tt.status)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	public, _ := newKeyPair(t)
	t.Setenv("TASKTRACK_AUTH_ISSUER", testIssuer)
	t.Setenv("TASKTRACK_AUTH_AUDIENCE", testAudience)
	t.Setenv("TASKTRACK_AUTH_PUBLIC_KEY", base64RawStd(public))

	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Issuer != testIssuer || cfg.Audience != testAudience {
		t.Fatalf("config = %+v", cfg)
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		t.Fatalf("key size = %d", len(cfg.Key))
	}
}

func TestLoadConfigFromEnvRequiresEveryValue(t *testing.T) {
	public, _ := newKeyPair(t)
	t.Setenv("TASKTRACK_AUTH_ISSUER", "")
	t.Setenv("TASKTRACK_AUTH_AUDIENCE", testAudience)
	t.Setenv("TASKTRACK_AUTH_PUBLIC_KEY", base64RawStd(public))

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error for missing issuer")
	}
}
