// Package config loads settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Document store backend: "firestore" or "postgres".
	StoreBackend string

	// Firestore – the key file is handed to the Google SDK untouched.
	CredentialsFile   string
	FirebaseProjectID string
	FirestoreDatabase string

	// Loader input and mapping.
	CoursesCSV      string
	ClassCollection string
	Department      string
	CourseNumbers   []int
	GraphicURL      string

	// Opt-in mapping fixes, both off for the seeded collection.
	HyphensToSpaces   bool
	FillSeasonStrings bool

	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// Server
	JWTSecret  string
	Debug      bool
	Port       string
	TLSDomains []string
}

// Load reads the configuration shared by the command line tools.
// Invalid configuration is fatal.
func Load() *Config {
	cfg, err := fromViper(newViper())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// LoadAPI reads configuration for the HTTP server, which additionally needs a
// JWT secret and a PostgreSQL database for its users.
func LoadAPI() *Config {
	cfg := Load()
	if err := cfg.validateAPI(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// HasPostgres reports whether enough PostgreSQL settings are present to connect.
func (c *Config) HasPostgres() bool {
	return c.DatabaseURL != "" || c.DBPass != ""
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func fromViper(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("STORE_BACKEND", BackendFirestore)
	v.SetDefault("FIREBASE_CREDENTIALS", "scripts/uiuc-coursehub-firebase-key.json")
	v.SetDefault("FIRESTORE_DATABASE", "(default)")
	v.SetDefault("COURSES_CSV", "src/assets/final_courses.csv")
	v.SetDefault("CLASS_COLLECTION", "Class")
	v.SetDefault("CLASS_DEPARTMENT", "ECE")
	v.SetDefault("CLASS_NUMBERS", "110,120,210,220,391,445,330")
	v.SetDefault("CLASS_GRAPHIC_URL", "url(https://ws.engr.illinois.edu/images/block.i.color.png)")
	v.SetDefault("CLASS_NAME_HYPHENS_TO_SPACES", false)
	v.SetDefault("CLASS_FILL_SEASON_STR", false)
	v.SetDefault("DB_USER", "coursehub")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "coursehub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("DEBUG", false)

	numbers, err := parseNumbers(v.GetString("CLASS_NUMBERS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		StoreBackend:      strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		CredentialsFile:   v.GetString("FIREBASE_CREDENTIALS"),
		FirebaseProjectID: v.GetString("FIREBASE_PROJECT_ID"),
		FirestoreDatabase: v.GetString("FIRESTORE_DATABASE"),
		CoursesCSV:        v.GetString("COURSES_CSV"),
		ClassCollection:   v.GetString("CLASS_COLLECTION"),
		Department:        strings.TrimSpace(v.GetString("CLASS_DEPARTMENT")),
		CourseNumbers:     numbers,
		GraphicURL:        v.GetString("CLASS_GRAPHIC_URL"),
		HyphensToSpaces:   v.GetBool("CLASS_NAME_HYPHENS_TO_SPACES"),
		FillSeasonStrings: v.GetBool("CLASS_FILL_SEASON_STR"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBUser:            v.GetString("DB_USER"),
		DBPass:            v.GetString("DB_PASS"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBName:            v.GetString("DB_NAME"),
		DBSSLMode:         v.GetString("DB_SSLMODE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		Debug:             v.GetBool("DEBUG"),
		Port:              v.GetString("PORT"),
		TLSDomains:        splitTrimmed(v.GetString("TLS_DOMAINS")),
	}, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		if c.CredentialsFile == "" {
			return errors.New("FIREBASE_CREDENTIALS must be set for the firestore backend")
		}
	case BackendPostgres:
		if !c.HasPostgres() {
			return errors.New("DATABASE_URL or DB_PASS must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s or %s)", c.StoreBackend, BackendFirestore, BackendPostgres)
	}
	if c.ClassCollection == "" {
		return errors.New("CLASS_COLLECTION must not be empty")
	}
	if c.Department == "" {
		return errors.New("CLASS_DEPARTMENT must not be empty")
	}
	if len(c.CourseNumbers) == 0 {
		return errors.New("CLASS_NUMBERS must list at least one course number")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if !c.HasPostgres() {
		return errors.New("DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func parseNumbers(s string) ([]int, error) {
	parts := splitTrimmed(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("CLASS_NUMBERS: %q is not a course number", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
