package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	configContent := `{
		"app_name": "TestApp",
		"listen_ip": "127.0.0.1",
		"listen_port": 9090,
		"session_key": "test-session-key",
		"database_path": "./test.db",
		"credential_scheme": "bcrypt"
	}`
	tmpfile, err := os.CreateTemp("", "config.json")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(configContent))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	require.NoError(t, LoadConfig(tmpfile.Name()))

	require.Equal(t, "TestApp", AppConfig.AppName)
	require.Equal(t, "127.0.0.1", AppConfig.ListenIP)
	require.Equal(t, 9090, AppConfig.ListenPort)
	require.Equal(t, "test-session-key", AppConfig.SessionKey)
	require.Equal(t, "./test.db", AppConfig.DatabasePath)
	require.Equal(t, "bcrypt", AppConfig.CredentialScheme)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config.json")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())
	_, err = tmpfile.Write([]byte(`{"app_name": "TestApp"}`))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	require.NoError(t, LoadConfig(tmpfile.Name()))

	require.Equal(t, "./taskhive.db", AppConfig.DatabasePath)
	require.Equal(t, "templates", AppConfig.TemplateDir)
	require.Equal(t, "legacy", AppConfig.CredentialScheme)
	// A random session key must have been generated.
	require.NotEmpty(t, AppConfig.SessionKey)
}

func TestLoadConfigInvalidPath(t *testing.T) {
	err := LoadConfig("non-existent-path.json")
	require.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	tmpfile, _ := os.CreateTemp("", "invalid_config.json")
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte(`{ "invalid": json }`))
	tmpfile.Close()

	err := LoadConfig(tmpfile.Name())
	require.Error(t, err)
}
