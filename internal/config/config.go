package config // package config loads application configuration from environment variables

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Nothing is required: every value has a default
// suitable for a local MongoDB.
type Config struct {
	Env         string        // application environment (e.g. "dev", "prod")
	Port        string        // HTTP port to listen on
	StoreDriver string        // "mongo" or "mysql"
	DBTimeout   time.Duration // connect and ping timeout for the store

	MongoURI        string // DB_CONNECTION, the MongoDB connection string
	MongoDatabase   string // database holding the posts collection
	MongoCollection string // collection holding post documents

	MySQLUser string // MySQL username
	MySQLPass string // MySQL password (optional)
	MySQLHost string // MySQL host address
	MySQLPort string // MySQL port number
	MySQLName string // MySQL database name
}

// Load reads configuration values from environment variables and returns a
// Config.  Unknown store drivers fall back to mongo with a log line.
func Load() Config {
	cfg := Config{
		Env:         envStr("APP_ENV", "dev"),
		Port:        envStr("APP_PORT", "3000"),
		StoreDriver: envStr("STORE_DRIVER", DriverMongo),
		DBTimeout:   envDur("DB_TIMEOUT", 10*time.Second),

		MongoURI:        envStr("DB_CONNECTION", "mongodb://localhost:27017"),
		MongoDatabase:   envStr("DB_NAME", "posts"),
		MongoCollection: envStr("DB_COLLECTION", "posts"),

		MySQLUser: envStr("MYSQL_USER", "root"),
		MySQLPass: envStr("MYSQL_PASS", ""),
		MySQLHost: envStr("MYSQL_HOST", "localhost"),
		MySQLPort: envStr("MYSQL_PORT", "3306"),
		MySQLName: envStr("MYSQL_DB", "posts"),
	}
	if cfg.StoreDriver != DriverMongo && cfg.StoreDriver != DriverMySQL {
		log.Printf("config: unknown STORE_DRIVER %q, using %s", cfg.StoreDriver, DriverMongo)
		cfg.StoreDriver = DriverMongo
	}
	if cfg.DBTimeout <= 0 {
		cfg.DBTimeout = 10 * time.Second
	}
	return cfg
}

// LoadDotEnv loads variables from the given files (".env" when none are
// named) into the process environment.  Variables that are already set win.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
