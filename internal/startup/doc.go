// Package startup handles configuration loading and startup/shutdown
// logging.
//
// # Configuration
//
// Configuration is read from environment variables by [LoadConfig]; the CLI
// loads a .env file first and lets flags override the result. Supported
// variables:
//
//   - MEDIA_DIR: Root of the image tree (default: ./public/images)
//   - STATIC_DIR: Client assets served at / (default: ./public)
//   - PORT: HTTP server port (default: 3000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - COPY_URL: Base URL handed to clients for copy links (default: request origin)
//   - THUMBNAIL_BACKEND: imaging or vips (default: imaging)
//   - PROBE_WORKERS: Concurrent header probes per directory (default: 2 per CPU, max 16)
//   - MAX_UPLOAD_MB: Upload size limit in megabytes (default: 10)
//   - WATCH_ENABLED: Follow the media directory with fsnotify (default: false)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: text or json (default: text)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO: Container limit used for GOMEMLIMIT (see package memory)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [PrintBanner], [LogSystemInfo], [LogConfig]: startup sections
//   - [LogHTTPRoutes]: registered routes (debug level)
//   - [LogServerStarted]: endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownStep], [LogShutdownComplete]
package startup
