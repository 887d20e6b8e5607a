// Package secrets resolves credentials such as the eBird API token from
// literal config values, ${VAR} references or mounted secret files.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// maxFileSize caps secret file reads (64 KiB).
const maxFileSize = 64 << 10

// Expand replaces ${VAR} and ${VAR:-fallback} references in s with values
// from the environment. An unset variable without a fallback is an error.
func Expand(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	out := os.Expand(s, func(ref string) string {
		name, fallback, hasFallback := strings.Cut(ref, ":-")
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", errors.Newf("missing environment variable(s): %s", strings.Join(missing, ", ")).
			Category(errors.CategoryConfiguration).
			Component("secrets").
			Build()
	}
	return out, nil
}

// ReadFile returns the contents of a secret file without trailing newlines.
// Files readable by group or others are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", errors.NewStd("secret file path is empty")
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.FileError(err, path, 0)
	}
	if !info.Mode().IsRegular() {
		return "", errors.Newf("secret path is not a regular file: %s", path).
			Category(errors.CategoryValidation).
			Component("secrets").
			Build()
	}
	if info.Size() > maxFileSize {
		return "", errors.Newf("secret file larger than %d bytes: %s", maxFileSize, path).
			Category(errors.CategoryLimit).
			Component("secrets").
			Build()
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module("secrets").Warn("Secret file is readable by group or others",
			logger.String("path", path),
			logger.String("mode", perm.String()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.FileError(err, path, info.Size())
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", errors.Newf("secret file is empty: %s", path).
			Category(errors.CategoryValidation).
			Component("secrets").
			Build()
	}
	return secret, nil
}

// Resolve returns the secret from file when set, otherwise value with
// environment references expanded. Both empty resolves to "".
func Resolve(file, value string) (string, error) {
	if file != "" {
		return ReadFile(file)
	}
	return Expand(value)
}
