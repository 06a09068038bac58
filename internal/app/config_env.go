package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// Environment variable names recognized by ApplyEnvOverrides.
const (
    EnvHost            = "TEXTEXTRACT_HOST"
    EnvPort            = "TEXTEXTRACT_PORT"
    EnvStyle           = "TEXTEXTRACT_STYLE"
    EnvMaxBody         = "TEXTEXTRACT_MAX_BODY"
    EnvReadTimeout     = "TEXTEXTRACT_READ_TIMEOUT"
    EnvWriteTimeout    = "TEXTEXTRACT_WRITE_TIMEOUT"
    EnvShutdownTimeout = "TEXTEXTRACT_SHUTDOWN_TIMEOUT"
    EnvMetrics         = "TEXTEXTRACT_METRICS"
    EnvLogFile         = "TEXTEXTRACT_LOG_FILE"
    EnvLogJSON         = "TEXTEXTRACT_LOG_JSON"
    EnvVerbose         = "VERBOSE"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This is used to let env take
// precedence over values coming from a config file while still allowing flags
// to remain highest precedence. Unparseable values are ignored.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" { cfg.Host = v }
    if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            cfg.Port = n
        }
    }
    if v := strings.TrimSpace(os.Getenv(EnvStyle)); v != "" { cfg.Style = v }
    if v := strings.TrimSpace(os.Getenv(EnvMaxBody)); v != "" {
        if n, err := ParseSize(v); err == nil {
            cfg.MaxBodyBytes = n
        }
    }
    if v := os.Getenv(EnvLogFile); v != "" { cfg.LogFile = v }

    setDuration := func(dst *time.Duration, envKey string) {
        if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                *dst = d
            }
        }
    }
    setDuration(&cfg.ReadTimeout, EnvReadTimeout)
    setDuration(&cfg.WriteTimeout, EnvWriteTimeout)
    setDuration(&cfg.ShutdownTimeout, EnvShutdownTimeout)

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.MetricsEnabled, EnvMetrics)
    setBool(&cfg.LogJSON, EnvLogJSON)
    setBool(&cfg.Verbose, EnvVerbose)
}
