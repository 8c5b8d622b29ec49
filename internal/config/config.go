package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  API keys for external collaborators (INSEE, Google Places,
// Mailtrap, MinIO) are optional at startup; the corresponding feature
// degrades with a warning when a key is absent.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign user access tokens
    AdminJWTSecret string // secret used to sign back-office admin tokens
    AccessTTLMin   int    // access token time-to-live in minutes
    BcryptCost     int    // bcrypt cost for password and OTP hashing
    OTPTTLMin      int    // one-time code validity window in minutes

    MailtrapToken string // Mailtrap send API token (optional)
    MailFrom      string // From address for transactional mail

    InseeAPIKey  string // INSEE Sirene API bearer token (optional)
    GoogleAPIKey string // Google Places API key (optional)

    MinioEndpoint  string // MinIO host:port (optional; uploads disabled when empty)
    MinioAccessKey string // MinIO access key
    MinioSecretKey string // MinIO secret key
    MinioBucket    string // bucket all object keys live under
    MinioUseSSL    bool   // connect to MinIO over TLS
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional variables
// fall back to sensible defaults.
func Load() Config {
    cfg := Config{
        Env:            must("APP_ENV"),            // environment (dev/test/prod)
        Port:           must("APP_PORT"),           // port to bind the HTTP server
        DBUser:         must("DB_USER"),            // database user
        DBPass:         os.Getenv("DB_PASS"),       // database password (empty allowed)
        DBHost:         must("DB_HOST"),            // database host
        DBPort:         must("DB_PORT"),            // database port
        DBName:         must("DB_NAME"),            // database name
        JWTSecret:      must("JWT_SECRET"),         // secret used for signing user JWTs
        AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"), // TTL for access tokens in minutes
        BcryptCost:     mustInt("BCRYPT_COST"),          // bcrypt cost factor
        OTPTTLMin:      envIntDefault("OTP_TTL_MIN", 10),

        MailtrapToken: os.Getenv("MAILTRAP_API_TOKEN"),
        MailFrom:      envDefault("MAIL_FROM", "noreply@ila26.com"),

        InseeAPIKey:  os.Getenv("INSEE_API_KEY"),
        GoogleAPIKey: os.Getenv("GOOGLE_PLACES_API_KEY"),

        MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
        MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
        MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
        MinioBucket:    envDefault("MINIO_BUCKET", "ila26"),
        MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
    }
    // Admin tokens fall back to the user secret when no dedicated secret is
    // configured.  Deployments are expected to set both in production.
    if cfg.AdminJWTSecret == "" {
        cfg.AdminJWTSecret = cfg.JWTSecret
    }
    return cfg
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

// envDefault returns the value of an optional environment variable or the
// provided default when it is unset or empty.
func envDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envIntDefault is the integer counterpart of envDefault.  Malformed values
// fall back to the default rather than aborting startup.
func envIntDefault(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return def
    }
    return n
}
