package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and byte limits.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	APIBaseURL        string // base URL of the upstream catalog API (no trailing slash)
	SessionSecret     string // secret used to sign session cookies
	SessionTTLMin     int    // session lifetime in minutes
	MaxThumbnailBytes int64  // maximum accepted thumbnail upload size in bytes
	MaxVideoBytes     int64  // maximum accepted video upload size in bytes
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The two upload
// limits are deliberately configurable: the upstream API contract has not
// settled on a single video ceiling, so operators set MAX_VIDEO_MB per
// deployment (500 by default) rather than relying on a compiled-in value.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),              // environment (dev/test/prod)
		Port:              must("APP_PORT"),             // port to bind the HTTP server
		APIBaseURL:        must("API_BASE_URL"),         // upstream catalog API root
		SessionSecret:     must("SESSION_SECRET"),       // secret for cookie signing
		SessionTTLMin:     mustInt("SESSION_TTL_MIN"),   // session TTL in minutes
		MaxThumbnailBytes: envMB("MAX_THUMBNAIL_MB", 5), // thumbnail ceiling, default 5MB
		MaxVideoBytes:     envMB("MAX_VIDEO_MB", 500),   // video ceiling, default 500MB
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envMB reads an optional megabyte count and returns it in bytes.  The
// default is used when the variable is unset; a malformed value is fatal
// because silently falling back could move an upload ceiling.
func envMB(key string, defMB int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defMB * 1024 * 1024
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Fatalf("invalid megabyte count for %s: %q", key, v)
	}
	return n * 1024 * 1024
}
