package media

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"image-catalog/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// errVipsUnavailable is returned by VipsCodec before InitVips or after ShutdownVips.
var errVipsUnavailable = errors.New("libvips not available")

// vipsLogLevel maps the application log level to the most verbose vips
// level worth forwarding.
func vipsLogLevel(level logging.LogLevel) vips.LogLevel {
	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo
	case logging.LevelInfo:
		return vips.LogLevelWarning
	case logging.LevelWarn:
		return vips.LogLevelError
	case logging.LevelError:
		return vips.LogLevelCritical
	default:
		return vips.LogLevelWarning
	}
}

// forwardVipsLog routes a libvips message into the application log.
func forwardVipsLog(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// InitVips initializes the libvips library
// This should be called once at startup
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup() to take effect
	vips.LoggingSettings(forwardVipsLog, vipsLogLevel(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,                // one image at a time to bound memory
		MaxCacheMem:      50 * 1024 * 1024, // 50MB cache
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources. libvips cannot be started again
// in the same process afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// VipsCodec generates thumbnails with libvips, which shrinks JPEGs during
// decode instead of materializing the full image.
type VipsCodec struct{}

// Name implements Codec.
func (VipsCodec) Name() string { return "vips" }

// Thumbnail implements Codec.
func (VipsCodec) Thumbnail(src io.Reader, dst io.Writer, width, height int) error {
	if !IsVipsAvailable() {
		return errVipsUnavailable
	}

	buf, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(buf)
	if err != nil {
		return fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return fmt.Errorf("vips auto-rotate failed: %w", err)
	}

	width, height = oriented(width, height, ref.Width(), ref.Height())
	if ref.Width() != width || ref.Height() != height {
		if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
			return fmt.Errorf("vips resize failed: %w", err)
		}
	}

	out, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        ThumbnailQuality,
		StripMetadata:  true,
		OptimizeCoding: true,
	})
	if err != nil {
		return fmt.Errorf("vips export failed: %w", err)
	}

	if _, err := dst.Write(out); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	return nil
}
