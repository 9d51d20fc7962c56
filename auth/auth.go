package auth

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/sessions"

	"taskhive/config"
)

// Flashes are stored as []interface{} inside the session; gob needs the
// concrete type registered before the first serialization.
func init() {
	gob.Register([]interface{}{})
}

var Store *sessions.FilesystemStore

const SessionName = "taskhive-session"

// InitStore builds the server-side session store. Sessions live as
// files under a per-process temp directory, so a restart drops every
// session (fresh directory, and a fresh key when none is configured).
func InitStore() error {
	dir, err := os.MkdirTemp("", "taskhive-sessions")
	if err != nil {
		return err
	}
	return InitStoreAt(dir)
}

// InitStoreAt is InitStore with an explicit session directory.
func InitStoreAt(dir string) error {
	if err := os.MkdirAll(filepath.Clean(dir), 0o700); err != nil {
		return err
	}

	// Derive two 32-byte keys from the session key: one for signing
	// (HMAC), one for content encryption (AES).
	authKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "auth"))
	encKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "encryption"))

	Store = sessions.NewFilesystemStore(dir, authKey[:], encKey[:])
	// FilesystemStore treats MaxAge <= 0 as "delete", so the cookie
	// carries an explicit lifetime even though sessions rarely live
	// past the next restart.
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return nil
}

// GetUserID resolves the calling user from the request's session
// cookie. Returns 0 for anonymous.
func GetUserID(r *http.Request) int {
	session, _ := Store.Get(r, SessionName)
	if id, ok := session.Values["userID"].(int); ok {
		return id
	}
	return 0
}

func SetSession(w http.ResponseWriter, r *http.Request, userID int) {
	session, _ := Store.Get(r, SessionName)
	session.Values["userID"] = userID
	session.Save(r, w)
}

// ClearSession forgets everything stored in the session (identity and
// any pending flashes) but keeps the session itself alive, so a flash
// queued later in the same request still reaches the next page.
func ClearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, SessionName)
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Save(r, w)
}

// Flash queues a one-shot message for the next rendered page.
func Flash(w http.ResponseWriter, r *http.Request, msg string) {
	session, _ := Store.Get(r, SessionName)
	session.AddFlash(msg)
	session.Save(r, w)
}

// TakeFlashes drains queued flash messages, saving the session so they
// are shown at most once.
func TakeFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := Store.Get(r, SessionName)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save(r, w)
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
