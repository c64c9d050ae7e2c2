package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/models"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
)

const testSigningKey = "test-signing-key"

// memOperators is an in-memory repository.Authorization.
type memOperators struct {
	byName map[string]models.Operator
	getErr error
}

func newMemOperators() *memOperators {
	return &memOperators{byName: map[string]models.Operator{}}
}

func (m *memOperators) Create(username, hash string) (int, error) {
	if _, ok := m.byName[username]; ok {
		return 0, fmt.Errorf("insert operator %q: %w", username, repository.ErrOperatorExists)
	}
	id := len(m.byName) + 1
	m.byName[username] = models.Operator{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (m *memOperators) GetByUsername(username string) (*models.Operator, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	op, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func TestAuthService_SignUpStoresNormalizedNameAndHash(t *testing.T) {
	t.Parallel()
	repo := newMemOperators()
	svc := NewAuthService(repo, testSigningKey, time.Hour)

	id, err := svc.SignUp("  Juan.Dela.Cruz ", "palay-2026")
	if err != nil || id != 1 {
		t.Fatalf("SignUp = %d, %v", id, err)
	}
	op, ok := repo.byName["juan.dela.cruz"]
	if !ok {
		t.Fatalf("operator not stored under normalized name: %+v", repo.byName)
	}
	if op.PasswordHash == "palay-2026" {
		t.Fatal("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte("palay-2026")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	if _, err := svc.SignUp("JUAN.DELA.CRUZ", "another-pass"); !errors.Is(err, repository.ErrOperatorExists) {
		t.Fatalf("expected ErrOperatorExists for case-insensitive duplicate, got %v", err)
	}
}

func TestAuthService_SignUpValidation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"short username", "ab", "long-enough", ErrInvalidUsername},
		{"blank username", "   ", "long-enough", ErrInvalidUsername},
		{"long username", "abcdefghijklmnopqrstuvwxyz0123456", "long-enough", ErrInvalidUsername},
		{"short password", "maria", "1234567", ErrWeakPassword},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := newMemOperators()
			_, err := NewAuthService(repo, testSigningKey, time.Hour).SignUp(tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
			if len(repo.byName) != 0 {
				t.Fatalf("nothing should be stored on validation error")
			}
		})
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(newMemOperators(), testSigningKey, time.Hour)
	if _, err := svc.SignUp("maria", "bantay-bot"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	tok, err := svc.GenerateToken("Maria", "bantay-bot")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, err := svc.ParseToken(tok)
	if err != nil || id != 1 {
		t.Fatalf("ParseToken = %d, %v", id, err)
	}
}

func TestAuthService_GenerateTokenRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	repo := newMemOperators()
	svc := NewAuthService(repo, testSigningKey, time.Hour)
	if _, err := svc.SignUp("maria", "bantay-bot"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	for _, tc := range []struct{ user, pass string }{
		{"maria", "wrong-pass"},
		{"pedro", "bantay-bot"},
		{"x", "bantay-bot"},
	} {
		if _, err := svc.GenerateToken(tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("GenerateToken(%q) err=%v, want ErrInvalidCredentials", tc.user, err)
		}
	}

	repo.getErr = errors.New("db down")
	if _, err := svc.GenerateToken("maria", "bantay-bot"); !errors.Is(err, repo.getErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(newMemOperators(), testSigningKey, time.Hour)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, c operatorClaims) string {
		s, err := jwt.NewWithClaims(method, &c).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	foreign := valid
	foreign.Issuer = "someone-else"

	cases := map[string]string{
		"malformed":      "not-a-jwt",
		"wrong key":      sign(jwt.SigningMethodHS256, []byte("other-key"), operatorClaims{RegisteredClaims: valid, OperatorID: 1}),
		"expired":        sign(jwt.SigningMethodHS256, []byte(testSigningKey), operatorClaims{RegisteredClaims: expired, OperatorID: 1}),
		"wrong issuer":   sign(jwt.SigningMethodHS256, []byte(testSigningKey), operatorClaims{RegisteredClaims: foreign, OperatorID: 1}),
		"hs512":          sign(jwt.SigningMethodHS512, []byte(testSigningKey), operatorClaims{RegisteredClaims: valid, OperatorID: 1}),
		"missing id":     sign(jwt.SigningMethodHS256, []byte(testSigningKey), operatorClaims{RegisteredClaims: valid}),
		"none algorithm": sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, operatorClaims{RegisteredClaims: valid, OperatorID: 1}),
	}
	for name, tok := range cases {
		if _, err := svc.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err=%v, want ErrInvalidToken", name, err)
		}
	}
}

func TestAuthService_TokenExpiresAfterTTL(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(newMemOperators(), testSigningKey, 10*time.Minute)
	clock := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	tok, err := svc.issueToken(5)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if id, err := svc.ParseToken(tok); err != nil || id != 5 {
		t.Fatalf("fresh token: %d, %v", id, err)
	}
	clock = clock.Add(11 * time.Minute)
	if _, err := svc.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestAuthService_EmptyKeyStillSigns(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(newMemOperators(), "", 0)
	if svc.tokenTTL != defaultTokenTTL || len(svc.signingKey) == 0 {
		t.Fatalf("defaults not applied: ttl=%v keylen=%d", svc.tokenTTL, len(svc.signingKey))
	}
	tok, err := svc.issueToken(3)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if id, err := svc.ParseToken(tok); err != nil || id != 3 {
		t.Fatalf("ParseToken = %d, %v", id, err)
	}
}
