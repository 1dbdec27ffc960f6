package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"image-catalog/internal/logging"
	"image-catalog/internal/workers"
)

// Config holds all application configuration
type Config struct {
	MediaDir         string
	StaticDir        string
	Port             string
	MetricsPort      string
	MetricsEnabled   bool
	CopyURL          string
	ThumbnailBackend string
	ProbeWorkers     int
	MaxUploadMB      int
	WatchEnabled     bool
	LogStaticFiles   bool
	LogHealthChecks  bool
	LogFormat        string
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// LoadConfig reads configuration from environment variables. It does not
// touch the filesystem; see [PrepareMediaDir].
func LoadConfig() (*Config, error) {
	config := &Config{
		MediaDir:         getEnv("MEDIA_DIR", "./public/images"),
		StaticDir:        getEnv("STATIC_DIR", "./public"),
		Port:             getEnv("PORT", "3000"),
		MetricsPort:      getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		CopyURL:          os.Getenv("COPY_URL"),
		ThumbnailBackend: getEnv("THUMBNAIL_BACKEND", "imaging"),
		ProbeWorkers:     workers.ForIO(16),
		MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 10),
		WatchEnabled:     getEnvBool("WATCH_ENABLED", false),
		LogStaticFiles:   getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks:  getEnvBool("LOG_HEALTH_CHECKS", true),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values and resolves paths to absolute form. Call it again
// after overriding fields.
func (c *Config) Validate() error {
	switch c.ThumbnailBackend {
	case "imaging", "vips":
	default:
		return fmt.Errorf("invalid THUMBNAIL_BACKEND %q (want imaging or vips)", c.ThumbnailBackend)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (want text or json)", c.LogFormat)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	c.ProbeWorkers = workers.Resolve(c.ProbeWorkers, 1)

	for _, p := range []*string{&c.MediaDir, &c.StaticDir} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// LogConfig logs the effective configuration.
func LogConfig(c *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  MEDIA_DIR:           %s", c.MediaDir)
	logging.Info("  STATIC_DIR:          %s", c.StaticDir)
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  METRICS_PORT:        %s", c.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", c.MetricsEnabled)
	if c.CopyURL != "" {
		logging.Info("  COPY_URL:            %s", c.CopyURL)
	} else {
		logging.Info("  COPY_URL:            (request origin)")
	}
	logging.Info("  THUMBNAIL_BACKEND:   %s", c.ThumbnailBackend)
	logging.Info("  PROBE_WORKERS:       %d", c.ProbeWorkers)
	logging.Info("  MAX_UPLOAD_MB:       %d", c.MaxUploadMB)
	logging.Info("  WATCH_ENABLED:       %v", c.WatchEnabled)
	logging.Info("  LOG_STATIC_FILES:    %v", c.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("  LOG_FORMAT:          %s", c.LogFormat)
	logging.Info("")
}

// PrepareMediaDir creates the media directory if needed and reports whether
// it is writable. Uploads and deletes fail without write access; browsing
// still works.
func PrepareMediaDir(c *Config) (writable bool, err error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := ensureDirectory(c.MediaDir, "media"); err != nil {
		return false, fmt.Errorf("media directory error: %w", err)
	}

	if err := testWriteAccess(c.MediaDir); err != nil {
		logging.Warn("  Media directory is not writable: %v", err)
		logging.Warn("  Uploads, deletes and thumbnail generation will fail")
		return false, nil
	}
	logging.Info("  [OK] Media directory is writable")
	logging.Info("")
	return true, nil
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
