package main

import (
	"fmt"
	"os"
)

// requireEnv reads a required environment variable, returning an error
// naming it when absent — matching the original pipeline's refusal to start
// without CONFIG/MSG_CONFIG set.
func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return v, nil
}
