package cmd

import (
	"fmt"
	"time"

	"image-catalog/internal/logging"

	"github.com/spf13/cobra"
)

func newWarmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Generate every missing representative thumbnail",
		Long: `Walks the media directory once, exactly as a catalog request would, so
that every representative thumbnail exists before the first visitor arrives.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(config)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			count, err := a.catalog.Warm(cmd.Context())
			if err != nil {
				return err
			}

			logging.Info("Warmed %d representative thumbnails in %v", count, time.Since(start).Round(time.Millisecond))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d thumbnails ready\n", count)
			return err
		},
	}
}
