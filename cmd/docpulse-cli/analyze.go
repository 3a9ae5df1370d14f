package main

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/docpulse/docpulse/internal/analysis"
	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/pdf"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a document's page orientations locally",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ui := newUI(noColor)

	if err := pdf.ValidateExtension(path); err != nil {
		ui.Error("%v (supported: %v)", err, pdf.AllowedExtensions())
		return err
	}

	logger := observability.NopLogger()
	if verbose {
		logger = observability.NewLogger(observability.LogConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "docpulse-cli",
		})
	}

	extractor := pdf.NewExtractor(logger)
	detector := analysis.NewDetector(logger)
	ctx := cmd.Context()

	pages, err := loadPages(ctx, ui, extractor, path)
	if err != nil {
		ui.Error("failed to load document: %v", err)
		return err
	}

	ui.Info("%d page(s) detected", len(pages))

	results, err := analyzePages(ctx, detector, pages)
	if err != nil {
		ui.Error("analysis failed: %v", err)
		return err
	}

	ui.PrintResults(results)

	vertical := 0
	for _, r := range results {
		if r.IsVertical {
			vertical++
		}
	}
	ui.Success("analyzed %d page(s): %d vertical, %d horizontal",
		len(results), vertical, len(results)-vertical)
	return nil
}

// loadPages extracts all pages of a PDF, or decodes a single image, with a
// spinner while the document is being read.
func loadPages(ctx context.Context, ui *uiWriter, extractor *pdf.Extractor, path string) ([]domain.PageImage, error) {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithSuffix(" extracting pages..."))
	if !ui.noColor {
		_ = sp.Color("cyan")
	}
	sp.Start()
	defer sp.Stop()

	if pdf.IsPDF(path) {
		return extractor.ExtractPages(ctx, path)
	}

	page, err := extractor.DecodeImage(ctx, path)
	if err != nil {
		return nil, err
	}
	return []domain.PageImage{page}, nil
}

// analyzePages runs the detector over every page behind a progress bar.
func analyzePages(ctx context.Context, detector *analysis.Detector, pages []domain.PageImage) ([]domain.PageResult, error) {
	bar := progressbar.Default(int64(len(pages)), "analyzing")

	results := make([]domain.PageResult, 0, len(pages))
	for _, page := range pages {
		result, err := detector.Analyze(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		results = append(results, result)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return results, nil
}
