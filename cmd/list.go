package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"image-catalog/internal/catalog"
	"image-catalog/internal/media"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// listedEntry is the printed form of a catalog entry.
type listedEntry struct {
	Path        string            `json:"path" yaml:"path"`
	Thumbnail   string            `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Resolution  *media.Resolution `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	IsDirectory bool              `json:"isDirectory" yaml:"isDirectory"`
}

// listedPage is the printed form of a catalog page.
type listedPage struct {
	Page         int           `json:"page" yaml:"page"`
	TotalPages   int           `json:"totalPages" yaml:"totalPages"`
	TotalEntries int           `json:"totalEntries" yaml:"totalEntries"`
	Entries      []listedEntry `json:"entries" yaml:"entries"`
}

func newListedPage(page catalog.Page) listedPage {
	out := listedPage{
		Page:         page.PageNumber,
		TotalPages:   page.TotalPages,
		TotalEntries: page.TotalEntries,
		Entries:      make([]listedEntry, 0, len(page.Entries)),
	}
	for _, entry := range page.Entries {
		switch e := entry.(type) {
		case *catalog.ImageEntry:
			res := e.Resolution
			out.Entries = append(out.Entries, listedEntry{Path: e.Source, Thumbnail: e.Thumbnail, Resolution: &res})
		case *catalog.DirectoryEntry:
			out.Entries = append(out.Entries, listedEntry{Path: e.Source, IsDirectory: true})
		}
	}
	return out
}

func writePage(w io.Writer, page listedPage, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(page); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, e := range page.Entries {
			if e.IsDirectory {
				if _, err := fmt.Fprintf(w, "%s/\t(empty)\n", e.Path); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", e.Path, e.Resolution, e.Thumbnail); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "page %d of %d (%d entries)\n", page.Page, page.TotalPages, page.TotalEntries)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func newListCmd() *cobra.Command {
	var (
		search string
		page   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the catalog",
		Example: `  # First page as a table
  image-catalog list

  # Second page of albums containing "beach", as YAML
  image-catalog list --search beach --page 2 --output yaml`,
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

			result, err := a.catalog.Catalog(cmd.Context(), search, page)
			if err != nil {
				return err
			}
			return writePage(cmd.OutOrStdout(), newListedPage(result), output)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only catalog images whose name contains this text")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number (1-indexed)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}
