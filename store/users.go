package store

import (
	"database/sql"
	"errors"

	"taskhive/models"
)

// CreateUser inserts a new account and returns its id. Returns
// ErrDuplicateUsername when the username is taken, so the registration
// race between lookup and insert resolves to the same outcome as a
// straight duplicate.
func (s *Store) CreateUser(username, hash string) (int, error) {
	result, err := s.db.Exec("INSERT INTO users (username, hash) VALUES (?, ?)", username, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// UserByName looks up an account by username.
func (s *Store) UserByName(username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow("SELECT id, username, hash FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserHash returns the stored credential for a user id.
func (s *Store) UserHash(id int) (string, error) {
	var hash string
	err := s.db.QueryRow("SELECT hash FROM users WHERE id = ?", id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// UpdateHash replaces the stored credential for a user id.
func (s *Store) UpdateHash(id int, hash string) error {
	_, err := s.db.Exec("UPDATE users SET hash = ? WHERE id = ?", hash, id)
	return err
}

// DeleteUser removes the account and all tasks it owns.
func (s *Store) DeleteUser(id int) error {
	if _, err := s.db.Exec("DELETE FROM tasks WHERE user_id = ?", id); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}
