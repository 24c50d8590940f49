package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"

	MediaNone     = "none"
	MediaFirebase = "firebase"
	MediaS3       = "s3"
)

type Config struct {
	Port        string
	Env         string
	CORSOrigins []string

	StoreDriver     string
	MongoURI        string
	MongoDatabase   string
	PostgresConnStr string
	SQLitePath      string

	JWTSecret string
	TokenTTL  time.Duration
	RedisURL  string

	MediaBackend            string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	S3Bucket                string
	AWSRegion               string
	MaxUploadBytes          int64

	SentryDSN    string
	OTLPEndpoint string

	AuthRateLimit float64
}

// Load reads .env (when present) and the process environment into a Config.
// It never fails; call Validate to check the result.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "codecircle")
	v.SetDefault("SQLITE_PATH", "codecircle.db")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("MEDIA_BACKEND", MediaNone)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("AUTH_RATE_LIMIT", 10)

	return &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		CORSOrigins:             splitList(v.GetString("CORS_ORIGINS")),
		StoreDriver:             strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDatabase:           v.GetString("MONGO_DATABASE"),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		SQLitePath:              v.GetString("SQLITE_PATH"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		TokenTTL:                v.GetDuration("TOKEN_TTL"),
		RedisURL:                v.GetString("REDIS_URL"),
		MediaBackend:            strings.ToLower(v.GetString("MEDIA_BACKEND")),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		FirebaseStorageBucket:   v.GetString("FIREBASE_STORAGE_BUCKET"),
		S3Bucket:                v.GetString("S3_BUCKET"),
		AWSRegion:               v.GetString("AWS_REGION"),
		MaxUploadBytes:          v.GetInt64("MAX_UPLOAD_BYTES"),
		SentryDSN:               v.GetString("SENTRY_DSN"),
		OTLPEndpoint:            v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AuthRateLimit:           v.GetFloat64("AUTH_RATE_LIMIT"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// FirebaseEnabled reports whether a firebase app should be initialized.
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseCredentialsPath != ""
}

// Validate collects every configuration problem and reports them together.
func (c *Config) Validate() error {
	var problems []string

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			problems = append(problems, "MONGO_URI must be set for the mongo store")
		}
	case StorePostgres:
		if c.PostgresConnStr == "" {
			problems = append(problems, "POSTGRES_CONN_STR must be set for the postgres store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH must be set for the sqlite store")
		}
	case StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.JWTSecret == "" && c.Env != "development" && c.Env != "test" {
		problems = append(problems, "JWT_SECRET must be set outside development")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}

	switch c.MediaBackend {
	case MediaNone:
	case MediaFirebase:
		if c.FirebaseCredentialsPath == "" || c.FirebaseStorageBucket == "" {
			problems = append(problems, "FIREBASE_CREDENTIALS_PATH and FIREBASE_STORAGE_BUCKET must be set for firebase media")
		}
	case MediaS3:
		if c.S3Bucket == "" {
			problems = append(problems, "S3_BUCKET must be set for s3 media")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown MEDIA_BACKEND %q", c.MediaBackend))
	}

	if len(c.CORSOrigins) == 0 {
		problems = append(problems, "CORS_ORIGINS must list at least one origin")
	}
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, "MAX_UPLOAD_BYTES must be positive")
	}
	if c.AuthRateLimit <= 0 {
		problems = append(problems, "AUTH_RATE_LIMIT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Secret returns the JWT signing secret, falling back to a fixed development key.
func (c *Config) Secret() string {
	if c.JWTSecret == "" {
		return "codecircle-dev-secret"
	}
	return c.JWTSecret
}
