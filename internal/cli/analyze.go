package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	"github.com/anime-shed/palette-inspector/internal/config"
	"github.com/anime-shed/palette-inspector/internal/factory"
	"github.com/anime-shed/palette-inspector/internal/simulation"
	"github.com/anime-shed/palette-inspector/pkg/models"
	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	server  string
	step    time.Duration
	timeout time.Duration
	json    bool
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <image> <image> [image]",
		Short: "Analyze 2-3 selfies from the terminal",
		Long: `Analyze 2-3 selfies and print the color profile.

Files that are not images are skipped; at most 3 images are used.
By default the built-in demo analyzer runs locally. Point --server at a running
palette instance (or any service speaking the same /api/analyze contract) to
analyze remotely.

Examples:
  palette analyze front.jpg side.jpg
  palette analyze --server http://localhost:8080 a.png b.png c.png
  palette analyze --json --step 0 a.jpg b.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "base URL of a remote analyzer")
	cmd.Flags().DurationVar(&opts.step, "step", simulation.DefaultStepDuration, "hold time per analysis phase")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "analysis timeout")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, paths []string, opts *analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loaded, err := loadImages(paths)
	if err != nil {
		return err
	}

	gate := validation.NewUploadGate()
	files := gate.Accept(nil, loaded)
	if skipped := len(loaded) - len(files); skipped > 0 {
		fmt.Fprintf(out, "Skipped %d file(s) that were not images or past the %d-image limit\n", skipped, validation.MaxFiles)
	}
	if !gate.CanAnalyze(files) {
		return fmt.Errorf("need at least %d images, got %d", validation.MinFiles, len(files))
	}

	a, err := newCLIAnalyzer(opts)
	if err != nil {
		return err
	}

	runner := simulation.NewRunner(a, nil,
		simulation.DefaultOptions().WithStepDuration(opts.step).WithTimeout(opts.timeout))

	report := func(p models.Progress) {
		if p.State == models.RunStepping && !opts.json {
			fmt.Fprintf(out, "[%d/%d] %s\n", p.Step+1, p.Total, p.Label)
		}
	}

	result, err := runner.Run(ctx, files, report)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintln(out, renderResult(result))
	return nil
}

// newCLIAnalyzer selects the demo analyzer or a remote one through the same
// factory the server uses
func newCLIAnalyzer(opts *analyzeOptions) (analyzer.ColorAnalyzer, error) {
	cfg := &config.Config{
		AnalyzerMode:    config.AnalyzerModeMock,
		AnalysisTimeout: opts.timeout,
	}
	if opts.server != "" {
		if err := validation.NewURLValidator().ValidateURL(opts.server); err != nil {
			return nil, fmt.Errorf("invalid --server %q: %w", opts.server, err)
		}
		cfg.AnalyzerMode = config.AnalyzerModeHTTP
		cfg.AnalyzerURL = opts.server
	}
	return factory.NewAnalyzerFromConfig(cfg)
}

// loadImages reads each path and sniffs its media type
func loadImages(paths []string) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		f := models.UploadedFile{
			Name: filepath.Base(p),
			Size: int64(len(data)),
			Data: data,
		}
		f.ContentType = analyzer.PartContentType(f)
		files = append(files, f)
	}
	return files, nil
}
