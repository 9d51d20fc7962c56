package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	AppName      string `json:"app_name"`
	ListenIP     string `json:"listen_ip"`
	ListenPort   int    `json:"listen_port"`
	SessionKey   string `json:"session_key"`
	DatabasePath string `json:"database_path"`
	// SeedFile, when set, is a SQL script executed at every start to
	// stage sample data (the file is an external collaborator, not
	// validated here).
	SeedFile    string `json:"seed_file"`
	TemplateDir string `json:"template_dir"`
	// CredentialScheme selects how passwords are stored: "legacy" keeps
	// the historical single-character ordinal value, "bcrypt" stores a
	// real hash. Changing the scheme invalidates existing credentials.
	CredentialScheme string `json:"credential_scheme"`
	EnableCaptcha    bool   `json:"enable_captcha"`
	EnableRateLimit  bool   `json:"enable_rate_limit"`
}

var AppConfig Config

func LoadConfig(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	AppConfig = Config{}
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		return err
	}

	// Override with environment variable if present
	if envKey := os.Getenv("TASKHIVE_SESSION_KEY"); envKey != "" {
		AppConfig.SessionKey = envKey
	}
	if envDB := os.Getenv("TASKHIVE_DATABASE"); envDB != "" {
		AppConfig.DatabasePath = envDB
	}

	if AppConfig.DatabasePath == "" {
		AppConfig.DatabasePath = "./taskhive.db"
	}
	if AppConfig.TemplateDir == "" {
		AppConfig.TemplateDir = "templates"
	}
	if AppConfig.CredentialScheme == "" {
		AppConfig.CredentialScheme = "legacy"
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		AppConfig.SessionKey = hex.EncodeToString(randomKey)
	}

	return nil
}
