package cmd

import (
	"fmt"
	"os"

	"image-catalog/internal/catalog"
	"image-catalog/internal/filesystem"
	"image-catalog/internal/logging"
	"image-catalog/internal/media"
	"image-catalog/internal/startup"

	"github.com/go-git/go-billy/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the image-catalog command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image-catalog",
		Short: "Browse a directory tree of images as a paginated catalog",
		Long: `image-catalog turns a directory of image albums into a catalog with one
representative image per album, thumbnails generated on demand, and a small
web client for browsing, uploading and deleting images.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("media-dir", "", "Media directory (overrides MEDIA_DIR)")
	flags.String("thumbnail-backend", "", "Thumbnail codec: imaging or vips (overrides THUMBNAIL_BACKEND)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (overrides LOG_FORMAT)")

	cmd.AddCommand(newServeCmd(), newListCmd(), newWarmCmd())

	return cmd
}

// loadConfig reads the environment, applies flag overrides and configures
// logging.
func loadConfig(cmd *cobra.Command) (*startup.Config, error) {
	config, err := startup.LoadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("media-dir") {
		config.MediaDir, _ = flags.GetString("media-dir")
	}
	if flags.Changed("thumbnail-backend") {
		config.ThumbnailBackend, _ = flags.GetString("thumbnail-backend")
	}
	if flags.Changed("log-format") {
		config.LogFormat, _ = flags.GetString("log-format")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	level := logging.GetLevel()
	if flags.Changed("log-level") {
		name, _ := flags.GetString("log-level")
		parsed, ok := logging.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("invalid log level %q", name)
		}
		level = parsed
	}
	logging.Configure(os.Stderr, level, config.LogFormat)

	return config, nil
}

// app bundles the catalog components shared by every command.
type app struct {
	config  *startup.Config
	fs      billy.Filesystem
	thumbs  *media.ThumbnailStore
	catalog *catalog.Service
}

func newApp(config *startup.Config) (*app, error) {
	codec, err := media.NewCodec(config.ThumbnailBackend)
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewMediaFS(config.MediaDir, filesystem.DefaultRetryConfig())
	thumbs := media.NewThumbnailStore(fs, codec)

	return &app{
		config:  config,
		fs:      fs,
		thumbs:  thumbs,
		catalog: catalog.NewService(fs, thumbs, config.ProbeWorkers),
	}, nil
}

// Close releases codec resources.
func (a *app) Close() {
	media.ShutdownVips()
}
