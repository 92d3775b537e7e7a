package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	httpTimeoutEnvVar = "HTTP_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "CV Session")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetHTTPTimeout bounds outbound calls to the identity provider and chat backend.
// Accepts Go duration syntax ("10s", "1m"); falls back to 10 seconds.
func (EnvVars) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(httpTimeoutEnvVar, "10s"))
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
