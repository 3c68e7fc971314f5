// Package dotenv loads the .env file layers before the config cascade
// runs. Already-set process variables always win.
package dotenv

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mdflow-ai/mdflow/internal/logging"
)

// Load reads the env-file layers from dir, most specific first:
// .env.<env>.local, .env.<env>, .env.local, .env. The environment name
// comes from NODE_ENV, defaulting to development. Unreadable layers are
// skipped.
func Load(dir string) {
	env := os.Getenv("NODE_ENV")
	if env == "" {
		env = "development"
	}

	for _, name := range []string{
		".env." + env + ".local",
		".env." + env,
		".env.local",
		".env",
	} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logging.Debug().Str("path", path).Err(err).Msg("skipping unreadable env file")
		}
	}
}
