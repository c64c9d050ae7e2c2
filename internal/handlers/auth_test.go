package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/repository"
	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/service"
)

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "tok123"}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := doJSON(r, http.MethodPost, "/auth/sign-up", `{"username":"maria","password":"bantay-bot"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["id"] != float64(42) || auth.lastSignUpUsername != "maria" {
		t.Fatalf("sign-up response=%v username=%q", m, auth.lastSignUpUsername)
	}

	w = doJSON(r, http.MethodPost, "/auth/sign-in", `{"username":"maria","password":"bantay-bot"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	m = nil
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["token"] != "tok123" || auth.lastGenPassword != "bantay-bot" {
		t.Fatalf("sign-in response=%v", m)
	}
}

func TestAuthHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
		auth *mockAuth
		want int
	}{
		{"bad body", "/auth/sign-in", `{"username":1}`, &mockAuth{}, http.StatusBadRequest},
		{"missing password", "/auth/sign-up", `{"username":"maria"}`, &mockAuth{}, http.StatusBadRequest},
		{"weak password", "/auth/sign-up", `{"username":"maria","password":"x"}`,
			&mockAuth{signUpErr: service.ErrWeakPassword}, http.StatusBadRequest},
		{"duplicate", "/auth/sign-up", `{"username":"maria","password":"bantay-bot"}`,
			&mockAuth{signUpErr: fmt.Errorf("insert operator: %w", repository.ErrOperatorExists)}, http.StatusConflict},
		{"sign-up storage failure", "/auth/sign-up", `{"username":"maria","password":"bantay-bot"}`,
			&mockAuth{signUpErr: errors.New("disk full")}, http.StatusInternalServerError},
		{"bad credentials", "/auth/sign-in", `{"username":"maria","password":"nope-nope"}`,
			&mockAuth{genTokenErr: service.ErrInvalidCredentials}, http.StatusUnauthorized},
		{"sign-in storage failure", "/auth/sign-in", `{"username":"maria","password":"bantay-bot"}`,
			&mockAuth{genTokenErr: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(newTestRouter(&service.Service{Authorization: tc.auth}), http.MethodPost, tc.path, tc.body)
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
