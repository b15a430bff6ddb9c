package app

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

// Config carries everything the process needs at startup. Remote settings
// may legitimately be empty: an unconfigured remote backend is an expected
// operating mode, not an error, and routes all persistence through the
// local cache.
type Config struct {
	LogMode     string
	ServerAddr  string
	CORSOrigins []string

	RemoteDSN         string
	RemoteAccessToken string
	RemoteJWTSecret   string

	FunctionsBaseURL string
	GenerateFunction string

	StorageBucket          string
	StorageCredentialsFile string
	SignedURLTTL           time.Duration

	LocalCachePath string

	SessionProbeTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("log.mode", "development")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("remote.dsn", "")
	v.SetDefault("remote.access_token", "")
	v.SetDefault("remote.jwt_secret", "")
	v.SetDefault("functions.base_url", "")
	v.SetDefault("functions.generate", "generate-tutor-reply")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.credentials_file", "")
	v.SetDefault("storage.signed_url_ttl_seconds", 3600)
	v.SetDefault("local.cache_path", "tutordesk-cache.db")
	v.SetDefault("session.probe_timeout_seconds", 6)

	if err := v.ReadInConfig(); err != nil {
		log.Info("No config.yaml found, using environment variables only")
	}

	return Config{
		LogMode:                v.GetString("log.mode"),
		ServerAddr:             v.GetString("server.addr"),
		CORSOrigins:            v.GetStringSlice("server.cors_origins"),
		RemoteDSN:              v.GetString("remote.dsn"),
		RemoteAccessToken:      v.GetString("remote.access_token"),
		RemoteJWTSecret:        v.GetString("remote.jwt_secret"),
		FunctionsBaseURL:       v.GetString("functions.base_url"),
		GenerateFunction:       v.GetString("functions.generate"),
		StorageBucket:          v.GetString("storage.bucket"),
		StorageCredentialsFile: v.GetString("storage.credentials_file"),
		SignedURLTTL:           time.Duration(v.GetInt("storage.signed_url_ttl_seconds")) * time.Second,
		LocalCachePath:         v.GetString("local.cache_path"),
		SessionProbeTimeout:    time.Duration(v.GetInt("session.probe_timeout_seconds")) * time.Second,
	}
}
