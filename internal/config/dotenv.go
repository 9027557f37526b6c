package config

import (
	"os"
	"strings"
)

// LoadDotEnv sets environment variables from a .env file for local
// development. Real environment variables always take precedence. Lines may
// use an optional "export " prefix; values may be quoted.
func LoadDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // missing file is fine, caller can ignore
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return nil
}
