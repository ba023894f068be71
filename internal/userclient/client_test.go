package userclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

func userServer(t *testing.T, role string, active bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"user-1","email":"asha@example.com","firstName":"Asha","lastName":"Verma","role":%q,"isActive":%t}`, role, active)
	}))
}

func TestLookupDecodesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/user-1", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"user-1","email":"asha@example.com","firstName":"Asha","lastName":"Verma","role":"STUDENT","isActive":true}`)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, APIKey: "secret"}, nil)
	user, err := client.Lookup(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "STUDENT", user.Role)
	require.True(t, user.IsActive)
}

func TestVerifyStudentActiveStudent(t *testing.T) {
	srv := userServer(t, "STUDENT", true)
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	ok, err := client.VerifyStudent(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyStudentAcceptsUserRole(t *testing.T) {
	srv := userServer(t, "USER", true)
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	ok, err := client.VerifyStudent(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyStudentRejectsInactiveAccount(t *testing.T) {
	srv := userServer(t, "STUDENT", false)
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	ok, err := client.VerifyStudent(context.Background(), "user-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyStudentRejectsOtherRoles(t *testing.T) {
	srv := userServer(t, "TEACHER", true)
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	ok, err := client.VerifyStudent(context.Background(), "user-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyStudentNotFoundIsDefinitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	ok, err := client.VerifyStudent(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyStudentServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	_, err := client.VerifyStudent(context.Background(), "user-1")
	require.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
}

func TestVerifyStudentTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
	_, err := client.VerifyStudent(context.Background(), "user-1")
	require.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
}
