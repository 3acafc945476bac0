// Package config loads application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` so
// that every package can declare an env-tagged struct and load it with a
// single call:
//
//	type SessionConfig struct {
//	    Duration time.Duration `env:"SESSION_DURATION" envDefault:"30m"`
//	    MaxPerUser int         `env:"SESSION_MAX_PER_USER" envDefault:"3"`
//	}
//
//	var cfg SessionConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// A default `.env` file in the working directory is loaded once, before the
// first parse; a missing file is not an error. MustLoad panics instead of
// returning an error for configuration the process cannot start without.
package config
