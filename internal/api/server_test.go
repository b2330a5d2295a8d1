package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"phoenix/internal/pet"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"  Bearer   spaced  ", "spaced"},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestWriteDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{pet.ErrInvalidSteps, http.StatusBadRequest},
		{pet.ErrNegativeDelta, http.StatusBadRequest},
		{pet.ErrUnknownFood, http.StatusBadRequest},
		{pet.ErrNotEnoughSteps, http.StatusBadRequest},
		{pet.ErrPetNotFound, http.StatusNotFound},
		{pet.ErrUserNotFound, http.StatusNotFound},
		{pet.ErrFriendNotFound, http.StatusNotFound},
		{pet.ErrUserExists, http.StatusConflict},
		{pet.ErrSelfFriend, http.StatusConflict},
		{pet.ErrFriendExists, http.StatusConflict},
		{pet.ErrDuplicateIdempotency, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("writeDomainError(%v) status = %d, want %d", tc.err, rec.Code, tc.want)
		}
		var body map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["error"] == "" {
			t.Fatalf("writeDomainError(%v) produced empty error body", tc.err)
		}
	}
}

func TestIdempotencyKeyHeaderWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/pet/steps", nil)
	r.Header.Set("Idempotency-Key", "client-key")
	if got := idempotencyKey(r); got != "client-key" {
		t.Fatalf("idempotencyKey = %q, want client-key", got)
	}

	r2 := httptest.NewRequest(http.MethodPost, "/v1/pet/steps", nil)
	k1, k2 := idempotencyKey(r2), idempotencyKey(r2)
	if k1 == "" || k2 == "" || k1 == k2 {
		t.Fatalf("generated keys should be unique and non-empty: %q %q", k1, k2)
	}
}
