package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUser(t *testing.T) {
	s := openTest(t)

	id, err := s.CreateUser("alice", "112")
	require.NoError(t, err)
	require.NotZero(t, id)

	u, err := s.UserByName("alice")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "112", u.Hash)
}

func TestCreateUserDuplicate(t *testing.T) {
	s := openTest(t)

	_, err := s.CreateUser("alice", "112")
	require.NoError(t, err)

	_, err = s.CreateUser("alice", "113")
	require.ErrorIs(t, err, ErrDuplicateUsername)

	// Still exactly one alice, with the original credential.
	u, err := s.UserByName("alice")
	require.NoError(t, err)
	require.Equal(t, "112", u.Hash)
}

func TestUserByNameNotFound(t *testing.T) {
	s := openTest(t)

	_, err := s.UserByName("nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserHash(t *testing.T) {
	s := openTest(t)

	id, err := s.CreateUser("bob", "98")
	require.NoError(t, err)

	hash, err := s.UserHash(id)
	require.NoError(t, err)
	require.Equal(t, "98", hash)

	_, err = s.UserHash(id + 1)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateHash(t *testing.T) {
	s := openTest(t)

	id, err := s.CreateUser("bob", "98")
	require.NoError(t, err)

	require.NoError(t, s.UpdateHash(id, "120"))

	hash, err := s.UserHash(id)
	require.NoError(t, err)
	require.Equal(t, "120", hash)
}

func TestDeleteUserCascades(t *testing.T) {
	s := openTest(t)

	id, err := s.CreateUser("carol", "99")
	require.NoError(t, err)
	other, err := s.CreateUser("dave", "100")
	require.NoError(t, err)

	require.NoError(t, s.CreateTask(id, "write report", "2024-06-01", 0))
	require.NoError(t, s.CreateTask(id, "water plants", "2024-06-02", 1))
	require.NoError(t, s.CreateTask(other, "pay rent", "2024-06-01", 2))

	require.NoError(t, s.DeleteUser(id))

	_, err = s.UserByName("carol")
	require.ErrorIs(t, err, ErrUserNotFound)

	mine, err := s.PendingTasks(id)
	require.NoError(t, err)
	require.Empty(t, mine)

	// The other user's tasks are untouched.
	theirs, err := s.PendingTasks(other)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
}
