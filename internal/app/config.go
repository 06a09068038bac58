package app

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Listener
	Host string
	Port int

	// HTTP server limits
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Presentation: "list" or "pre"
	Style string

	// Observability
	MetricsEnabled bool
	Verbose        bool
	LogJSON        bool
	LogFile        string
}

// Defaults shared by flag registration, file overlay and validation.
const (
	hostDefault            = "localhost"
	portDefault            = 8080
	styleDefault           = "list"
	maxBodyDefault         = 1 << 20
	readTimeoutDefault     = 15 * time.Second
	writeTimeoutDefault    = 30 * time.Second
	idleTimeoutDefault     = 60 * time.Second
	shutdownTimeoutDefault = 10 * time.Second
)

// DefaultConfig returns the configuration used when nothing else is set:
// a list-style form on localhost:8080.
func DefaultConfig() Config {
	return Config{
		Host:            hostDefault,
		Port:            portDefault,
		MaxBodyBytes:    maxBodyDefault,
		ReadTimeout:     readTimeoutDefault,
		WriteTimeout:    writeTimeoutDefault,
		IdleTimeout:     idleTimeoutDefault,
		ShutdownTimeout: shutdownTimeoutDefault,
		Style:           styleDefault,
	}
}

// NoBodyLimit as MaxBodyBytes turns the request body cap off.
const NoBodyLimit int64 = -1

// ParseSize parses a body size such as "512 KiB" or "2MB". "0", "off", "none"
// and "unlimited" yield NoBodyLimit; sizes beyond int64 are rejected.
func ParseSize(s string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "off", "none", "unlimited":
		return NoBodyLimit, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	if n == 0 {
		return NoBodyLimit, nil
	}
	return int64(n), nil
}
