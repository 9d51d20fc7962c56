package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"taskhive/config"
)

func TestMain(m *testing.M) {
	// Setup
	config.AppConfig.SessionKey = "test-secret-key-12345678901234567890123456789012"
	dir, err := os.MkdirTemp("", "taskhive-auth-test")
	if err != nil {
		panic(err)
	}
	if err := InitStoreAt(dir); err != nil {
		panic(err)
	}

	code := m.Run()

	// Teardown
	os.RemoveAll(dir)

	os.Exit(code)
}

// replay builds a new request carrying the cookies set by a previous
// response, the way a browser would on the next page load.
func replay(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	SetSession(w, r, 42)

	require.Equal(t, 42, GetUserID(replay(w)))
}

func TestGetUserIDAnonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	require.Equal(t, 0, GetUserID(r))
}

func TestClearSession(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	SetSession(w, r, 7)

	r2 := replay(w)
	w2 := httptest.NewRecorder()
	ClearSession(w2, r2)

	require.Equal(t, 0, GetUserID(replay(w2)))
}

func TestFlashShownOnce(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	Flash(w, r, "ERROR: invalid username")

	r2 := replay(w)
	w2 := httptest.NewRecorder()
	msgs := TakeFlashes(w2, r2)
	require.Equal(t, []string{"ERROR: invalid username"}, msgs)

	// A second page load sees nothing.
	r3 := replay(w2)
	w3 := httptest.NewRecorder()
	require.Empty(t, TakeFlashes(w3, r3))
}

func TestClearSessionKeepsLaterFlash(t *testing.T) {
	// A flash queued after a clear in the same request must still
	// reach the next page (login error after the form cleared the
	// old session).
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	SetSession(w, r, 9)

	r2 := replay(w)
	w2 := httptest.NewRecorder()
	ClearSession(w2, r2)
	Flash(w2, r2, "ERROR: invalid username/password combination")

	r3 := replay(w2)
	w3 := httptest.NewRecorder()
	require.Equal(t, 0, GetUserID(r3))
	require.Equal(t, []string{"ERROR: invalid username/password combination"}, TakeFlashes(w3, r3))
}
