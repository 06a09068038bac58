package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strings"
)

// LoadEnvFiles loads one or more dotenv files of KEY=VALUE pairs into the
// process environment. Later files override earlier ones. Blank lines, lines
// starting with '#', and an optional leading "export " are handled; values are
// not expanded. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p); err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return fmt.Errorf("load env file %s: %w", p, err)
        }
    }
    return nil
}

func loadEnvFile(path string) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        key, val, ok := parseEnvLine(scanner.Text())
        if !ok {
            continue
        }
        if err := os.Setenv(key, val); err != nil {
            return err
        }
    }
    return scanner.Err()
}

// parseEnvLine splits one dotenv line. Quoted values keep inner '#'; for
// unquoted values a " #" starts a trailing comment.
func parseEnvLine(line string) (string, string, bool) {
    line = strings.TrimSpace(line)
    if line == "" || strings.HasPrefix(line, "#") {
        return "", "", false
    }
    line = strings.TrimPrefix(line, "export ")
    eq := strings.IndexByte(line, '=')
    if eq <= 0 {
        return "", "", false
    }
    key := strings.TrimSpace(line[:eq])
    val := strings.TrimSpace(line[eq+1:])
    if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') {
        if end := strings.IndexByte(val[1:], val[0]); end >= 0 {
            return key, val[1 : end+1], true
        }
    }
    if i := strings.Index(val, " #"); i >= 0 {
        val = strings.TrimSpace(val[:i])
    }
    return key, val, true
}
