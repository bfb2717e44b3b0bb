package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth; empty disables bearer-token checks.
	APIKey string

	// Server-side conversions are confined to this directory.
	WorkDir string

	// Upload limits
	MaxUploadBytes int64

	// Output naming
	OutputSuffix string

	// Result store
	ResultTTL time.Duration

	// Latency stats window
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("WORDHTML_API_KEY"),

		WorkDir: envOr("WORK_DIR", "."),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		OutputSuffix: envOr("OUTPUT_SUFFIX", "_converted.html"),

		ResultTTL:   envDuration("RESULT_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", false),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	if !strings.HasSuffix(strings.ToLower(c.OutputSuffix), ".html") {
		return fmt.Errorf("OUTPUT_SUFFIX must end in .html: %q", c.OutputSuffix)
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("OUTPUT_SUFFIX must not contain path separators: %q", c.OutputSuffix)
	}
	info, err := os.Stat(c.WorkDir)
	if err != nil {
		return fmt.Errorf("WORK_DIR: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("WORK_DIR is not a directory: %q", c.WorkDir)
	}
	return nil
}

// ResolvePath joins a client-supplied relative path onto WorkDir and rejects
// anything that would escape it.
func (c Config) ResolvePath(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path must be relative: %q", rel)
	}
	root := c.WorkDirAbs()
	full := filepath.Join(root, filepath.Clean(rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes work directory: %q", rel)
	}
	return full, nil
}

// WorkDirAbs returns WorkDir as an absolute path.
func (c Config) WorkDirAbs() string {
	if abs, err := filepath.Abs(c.WorkDir); err == nil {
		return abs
	}
	return filepath.Clean(c.WorkDir)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
