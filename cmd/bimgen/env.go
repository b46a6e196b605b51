package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// envFile returns the env file to load: BIMGEN_ENV_FILE or ./.env.
func envFile() string {
	return envOr("BIMGEN_ENV_FILE", defaultEnvFile)
}

// loadEnv reads BIMGEN_* defaults from path. A missing file is not an
// error; variables already set in the environment win.
func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load environment from %s: %w", path, err)
	}
	slog.Debug("Loaded environment", "path", path)
	return nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
