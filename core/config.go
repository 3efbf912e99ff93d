package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is set by NewConfig. Package-level helpers (mail templates, reset tokens)
// read it; everything else receives a *Config explicitly.
var Conf *Config

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	// StorageConfig holds the blob store (Alibaba Cloud OSS) settings.
	StorageConfig struct {
		Endpoint        string
		AccessKeyID     string
		AccessKeySecret string
		Bucket          string
		KeyPrefix       string
		UploadMaxSize   int64 // bytes
	}

	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string
		WorkDir  string

		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromEmail          mail.Address
		SendgridApiKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the app configuration from the environment;
// an optional config/.env.<env> file is loaded first if present.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kazi")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseUrl", "http://localhost:8080")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "kazi")
	v.SetDefault("databaseUser", "kazi")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTls", true)
	v.SetDefault("storageUploadMaxSize", 20<<20)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:  v.GetString("appName"),
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: env == "TEST",
		Build:    v.GetString("build"),
		WorkDir:  wd,

		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           v.GetString("frontendBaseUrl"),
		DefaultFromEmail:          parseAddress(v.GetString("defaultFromEmail")),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			DisableTLS:    v.GetBool("databaseDisableTls"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storageEndpoint"),
			AccessKeyID:     v.GetString("storageAccessKeyId"),
			AccessKeySecret: v.GetString("storageAccessKeySecret"),
			Bucket:          v.GetString("storageBucket"),
			KeyPrefix:       v.GetString("storageKeyPrefix"),
			UploadMaxSize:   v.GetInt64("storageUploadMaxSize"),
		},
	}
	Conf = conf
	return conf
}

func parseAddress(s string) mail.Address {
	if addr, err := mail.ParseAddress(s); err == nil {
		return *addr
	}
	return mail.Address{Address: s}
}
