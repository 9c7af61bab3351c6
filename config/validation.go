package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a single pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

const minProductionSecretLen = 32

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	require("SERVER_PORT", cfg.Server.Port)
	require("JWT_SECRET", cfg.JWT.Secret)
	if cfg.Environment == Production && cfg.JWT.Secret != "" && len(cfg.JWT.Secret) < minProductionSecretLen {
		errs = append(errs, ValidationError{
			Field:   "JWT_SECRET",
			Message: fmt.Sprintf("must be at least %d characters in production", minProductionSecretLen),
		})
	}
	if cfg.JWT.TTL <= 0 {
		errs = append(errs, ValidationError{Field: "JWT_TTL", Message: "must be positive"})
	}

	switch cfg.Database.Driver {
	case "postgres":
		require("DB_HOST", cfg.Database.Host)
		require("DB_PORT", cfg.Database.Port)
		require("DB_USER", cfg.Database.User)
		require("DB_PASSWORD", cfg.Database.Password)
		require("DB_NAME", cfg.Database.Name)
	case "sqlite":
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not allowed in production"})
		}
		require("DB_SQLITE_PATH", cfg.Database.SQLitePath)
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.Database.Driver)})
	}

	if cfg.LLM.Enabled {
		require("LLM_API_KEY", cfg.LLM.APIKey)
		require("LLM_BASE_URL", cfg.LLM.BaseURL)
	}

	switch cfg.Storage.Driver {
	case "none", "":
	case "s3":
		require("STORAGE_BUCKET", cfg.Storage.Bucket)
		require("AWS_REGION", cfg.Storage.Region)
	case "minio":
		require("STORAGE_BUCKET", cfg.Storage.Bucket)
		require("STORAGE_ENDPOINT", cfg.Storage.Endpoint)
		require("STORAGE_ACCESS_KEY", cfg.Storage.AccessKey)
		require("STORAGE_SECRET_KEY", cfg.Storage.SecretKey)
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.Storage.Driver)})
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{Field: "LOG_FORMAT", Message: "must be json or console"})
	}

	if cfg.RateLimit.Window <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
