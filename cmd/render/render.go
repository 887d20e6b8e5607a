// Package render implements the command that writes a static snapshot of the
// dashboard.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/k3a/html2text"
	"github.com/spf13/cobra"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpclient"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpcontroller"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/loader"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// Output formats
const (
	FormatHTML = "html"
	FormatText = "text"
)

// Options controls a render.
type Options struct {
	Output  string // file path, "-" for stdout
	Format  string
	Species string
	Search  string
	Sort    string
	Dir     string
}

// Command creates the render command.
func Command(settings *conf.Settings) *cobra.Command {
	opts := Options{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the dashboard as a static page",
		Long:  "Render the dashboard to a self-contained HTML file for static hosting, or to plain text.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings, opts, cmd.OutOrStdout())
		},
	}

	setupFlags(cmd, &opts)
	return cmd
}

// setupFlags configures flags specific to the render command.
func setupFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "index.html", `Output file, "-" for stdout`)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatHTML, "Output format: html, text")
	cmd.Flags().StringVar(&opts.Species, "species", "", "Only show this species (exact common name)")
	cmd.Flags().StringVarP(&opts.Search, "query", "q", "", "Only show sightings matching this text")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort column: comName, sciName, locName, obsDt, howMany")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Sort direction: asc, desc")
}

// Run renders the current document with opts. A missing document still
// renders the page with its no-data message.
func Run(ctx context.Context, settings *conf.Settings, opts Options, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Global().Module("render")

	if opts.Format != FormatHTML && opts.Format != FormatText {
		return errors.Newf("unknown output format %q", opts.Format).
			Category(errors.CategoryValidation).
			Component("render").
			Build()
	}

	client := httpclient.New(nil)
	defer client.Close()

	q := httpcontroller.ParseQuery(url.Values{
		"species": {opts.Species},
		"q":       {opts.Search},
		"sort":    {opts.Sort},
		"dir":     {opts.Dir},
	})
	viewOpts := httpcontroller.NewViewOptions(settings, time.Local, log.Module("dashboard"))

	v, err := httpcontroller.BuildView(ctx, loader.NewSource(settings.Data, client), q, viewOpts)
	if err != nil {
		log.Warn("Rendering without sightings", logger.Error(err))
	}

	renderer, err := httpcontroller.NewTemplateRenderer()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, v, true); err != nil {
		return err
	}

	out := buf.Bytes()
	if opts.Format == FormatText {
		out = []byte(html2text.HTML2Text(buf.String()) + "\n")
	}

	if opts.Output == "-" {
		_, err := stdout.Write(out)
		return err
	}
	if err := writeFile(opts.Output, out); err != nil {
		return err
	}

	log.Info("Dashboard rendered",
		logger.String("path", opts.Output),
		logger.String("format", opts.Format),
		logger.Int("rows", len(v.Page.Rows)))
	fmt.Fprintf(stdout, "Wrote %s\n", opts.Output)
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(err, dir, 0)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // published page
		return errors.FileError(err, path, int64(len(data)))
	}
	return nil
}
