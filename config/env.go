package config

import (
	"fmt"
	"os"
	"strconv"
)

func GetString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// GetInt returns fallback when key is unset or empty and an error when the
// value is not an integer.
func GetInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

// GetBool accepts the strconv.ParseBool spellings.
func GetBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}
