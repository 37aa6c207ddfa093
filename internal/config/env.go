package config

import (
	"errors"
	"fmt"
	"strings"
)

var required = []struct {
	key   string
	value func(Config) string
}{
	{"MONGO_URI", func(c Config) string { return c.MongoURI }},
	{"JWT_SECRET", func(c Config) string { return c.JWTSecret }},
}

// Validate reports every required variable that is missing.
func (c Config) Validate() error {
	var errs []error
	for _, r := range required {
		if strings.TrimSpace(r.value(c)) == "" {
			errs = append(errs, fmt.Errorf("ENV %s is required", r.key))
		}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("ENV LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
