package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/textextract/internal/render"
)

// FileConfig represents the single-file configuration schema.
// Durations use Go syntax ("15s") and sizes accept units ("2 MiB") so the
// same file works as YAML or JSON.
type FileConfig struct {
    Server struct {
        Host            string `yaml:"host" json:"host"`
        Port            int    `yaml:"port" json:"port"`
        MaxBody         string `yaml:"maxBody" json:"maxBody"`
        ReadTimeout     string `yaml:"readTimeout" json:"readTimeout"`
        WriteTimeout    string `yaml:"writeTimeout" json:"writeTimeout"`
        IdleTimeout     string `yaml:"idleTimeout" json:"idleTimeout"`
        ShutdownTimeout string `yaml:"shutdownTimeout" json:"shutdownTimeout"`
    } `yaml:"server" json:"server"`

    Render struct {
        Style string `yaml:"style" json:"style"`
    } `yaml:"render" json:"render"`

    Metrics struct {
        Enable bool `yaml:"enable" json:"enable"`
    } `yaml:"metrics" json:"metrics"`

    Log struct {
        Verbose bool   `yaml:"verbose" json:"verbose"`
        JSON    bool   `yaml:"json" json:"json"`
        File    string `yaml:"file" json:"file"`
    } `yaml:"log" json:"log"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// still hold their zero or default value, so explicit settings made before the
// overlay survive. Malformed sizes or durations are reported, not skipped.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
    if cfg == nil { return nil }

    if (cfg.Host == "" || cfg.Host == hostDefault) && fc.Server.Host != "" { cfg.Host = fc.Server.Host }
    if (cfg.Port == 0 || cfg.Port == portDefault) && fc.Server.Port > 0 { cfg.Port = fc.Server.Port }
    if (cfg.Style == "" || cfg.Style == styleDefault) && fc.Render.Style != "" { cfg.Style = fc.Render.Style }

    if s := strings.TrimSpace(fc.Server.MaxBody); s != "" && (cfg.MaxBodyBytes == 0 || cfg.MaxBodyBytes == maxBodyDefault) {
        n, err := ParseSize(s)
        if err != nil {
            return fmt.Errorf("config: server.maxBody: %w", err)
        }
        cfg.MaxBodyBytes = n
    }

    durations := []struct {
        name string
        raw  string
        dst  *time.Duration
        def  time.Duration
    }{
        {"server.readTimeout", fc.Server.ReadTimeout, &cfg.ReadTimeout, readTimeoutDefault},
        {"server.writeTimeout", fc.Server.WriteTimeout, &cfg.WriteTimeout, writeTimeoutDefault},
        {"server.idleTimeout", fc.Server.IdleTimeout, &cfg.IdleTimeout, idleTimeoutDefault},
        {"server.shutdownTimeout", fc.Server.ShutdownTimeout, &cfg.ShutdownTimeout, shutdownTimeoutDefault},
    }
    for _, d := range durations {
        s := strings.TrimSpace(d.raw)
        if s == "" || (*d.dst != 0 && *d.dst != d.def) {
            continue
        }
        v, err := time.ParseDuration(s)
        if err != nil {
            return fmt.Errorf("config: %s: %w", d.name, err)
        }
        *d.dst = v
    }

    if !cfg.MetricsEnabled && fc.Metrics.Enable { cfg.MetricsEnabled = true }
    if !cfg.Verbose && fc.Log.Verbose { cfg.Verbose = true }
    if !cfg.LogJSON && fc.Log.JSON { cfg.LogJSON = true }
    if cfg.LogFile == "" && fc.Log.File != "" { cfg.LogFile = fc.Log.File }
    return nil
}

// ValidateConfig performs minimal schema validation for required settings.
// Port 0 is accepted and binds an ephemeral port.
func ValidateConfig(cfg Config) error {
    if trim(cfg.Host) == "" {
        return errors.New("config: host is required")
    }
    if cfg.Port < 0 || cfg.Port > 65535 {
        return fmt.Errorf("config: port %d out of range", cfg.Port)
    }
    if _, err := render.ParseStyle(cfg.Style); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if cfg.MaxBodyBytes < NoBodyLimit {
        return fmt.Errorf("config: max body %d is negative", cfg.MaxBodyBytes)
    }
    if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 || cfg.ShutdownTimeout < 0 {
        return errors.New("config: negative timeouts are not allowed")
    }
    return nil
}

func trim(s string) string {
    i := 0
    j := len(s)
    for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') { i++ }
    for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\n' || s[j-1] == '\r') { j-- }
    return s[i:j]
}
