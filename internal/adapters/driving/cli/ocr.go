package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Track OCR runs and page consensus",
	Long: `Record OCR attempts for a document version and the consensus result of
each page. Pages are frozen once their run has finished.`,
}

var ocrStartCmd = &cobra.Command{
	Use:   "start [doc-id] [pipeline-version] [engine]",
	Short: "Start an OCR run",
	Args:  cobra.ExactArgs(3),
	RunE:  runOcrStart,
}

var ocrPageCmd = &cobra.Command{
	Use:   "page [ocr-run-id] [page-number] [consensus-uri]",
	Short: "Record the consensus result of a page",
	Long: `Upserts the consensus result of a page. Quality is measured from the
text given with --text-file, or taken verbatim from --quality.`,
	Args: cobra.ExactArgs(3),
	RunE: runOcrPage,
}

var ocrFinishCmd = &cobra.Command{
	Use:   "finish [ocr-run-id] [succeeded|failed|cancelled]",
	Short: "Finish an OCR run",
	Args:  cobra.ExactArgs(2),
	RunE:  runOcrFinish,
}

var ocrRunsCmd = &cobra.Command{
	Use:   "runs [doc-id] [pipeline-version]",
	Short: "List the OCR runs of a document version",
	Args:  cobra.ExactArgs(2),
	RunE:  runOcrRuns,
}

var ocrPagesCmd = &cobra.Command{
	Use:   "pages [ocr-run-id]",
	Short: "List the pages of an OCR run",
	Args:  cobra.ExactArgs(1),
	RunE:  runOcrPages,
}

var (
	ocrTextFile string
	ocrQuality  string
	ocrMetrics  string
	ocrFailing  bool
	ocrJSON     bool
)

func init() {
	ocrPageCmd.Flags().StringVar(&ocrTextFile, "text-file", "", "page text to measure (- for stdin)")
	ocrPageCmd.Flags().StringVar(&ocrQuality, "quality", "", "page quality as a JSON object")
	ocrFinishCmd.Flags().StringVar(&ocrMetrics, "metrics", "", "OCR metrics as a JSON object")
	ocrPagesCmd.Flags().BoolVar(&ocrFailing, "failing", false, "only pages below the quality gate")
	ocrPagesCmd.Flags().BoolVar(&ocrJSON, "json", false, "output as JSON")
	ocrRunsCmd.Flags().BoolVar(&ocrJSON, "json", false, "output as JSON")

	ocrCmd.AddCommand(ocrStartCmd)
	ocrCmd.AddCommand(ocrPageCmd)
	ocrCmd.AddCommand(ocrFinishCmd)
	ocrCmd.AddCommand(ocrRunsCmd)
	ocrCmd.AddCommand(ocrPagesCmd)
	rootCmd.AddCommand(ocrCmd)
}

func runOcrStart(cmd *cobra.Command, args []string) error {
	if ocrTracker == nil {
		return errNotConfigured("OCR tracker")
	}

	run, err := ocrTracker.RecordOcrRun(cmd.Context(), driving.RecordOcrRunRequest{
		DocumentID:      args[0],
		PipelineVersion: args[1],
		Engine:          args[2],
	})
	if err != nil {
		return fmt.Errorf("failed to start OCR run: %w", err)
	}

	cmd.Printf("Started OCR run %s (%s)\n", run.ID, run.Engine)
	return nil
}

func runOcrPage(cmd *cobra.Command, args []string) error {
	if ocrTracker == nil {
		return errNotConfigured("OCR tracker")
	}

	page, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid page number %q: %w", args[1], err)
	}

	req := driving.PageConsensusRequest{
		RunID:        args[0],
		PageNumber:   page,
		ConsensusURI: args[2],
	}
	if ocrQuality != "" {
		var q domain.PageQuality
		if err := decodeJSONFlag("quality", ocrQuality, &q); err != nil {
			return err
		}
		req.Quality = &q
	} else if ocrTextFile != "" {
		text, err := readTextArg(cmd, ocrTextFile)
		if err != nil {
			return err
		}
		req.Text = text
	}

	recorded, err := ocrTracker.RecordPageConsensus(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}

	cmd.Printf("Page %d of %s: %d chars, alpha %.2f, printable %.2f\n",
		recorded.PageNumber, recorded.RunID, recorded.Quality.Chars,
		recorded.Quality.AlphaRatio, recorded.Quality.PrintableRatio)
	return nil
}

func runOcrFinish(cmd *cobra.Command, args []string) error {
	if ocrTracker == nil {
		return errNotConfigured("OCR tracker")
	}

	var metrics domain.OcrMetrics
	if err := decodeJSONFlag("metrics", ocrMetrics, &metrics); err != nil {
		return err
	}

	run, err := ocrTracker.FinishOcrRun(cmd.Context(), driving.FinishOcrRunRequest{
		RunID:   args[0],
		Status:  domain.RunStatus(args[1]),
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to finish OCR run: %w", err)
	}

	cmd.Printf("OCR run %s %s.\n", run.ID, run.Status)
	return nil
}

func runOcrRuns(cmd *cobra.Command, args []string) error {
	if ocrTracker == nil {
		return errNotConfigured("OCR tracker")
	}

	runs, err := ocrTracker.ListOcrRuns(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to list OCR runs: %w", err)
	}

	if ocrJSON {
		return printJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No OCR runs found.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("  %s  %-10s %-12s pages=%d failed=%d  %s\n",
			r.ID, r.Status, r.Engine, r.Metrics.Pages, r.Metrics.PagesFailed, formatTime(r.CreatedAt))
	}
	return nil
}

func runOcrPages(cmd *cobra.Command, args []string) error {
	if ocrTracker == nil {
		return errNotConfigured("OCR tracker")
	}

	var (
		pages []domain.OcrPage
		err   error
	)
	if ocrFailing {
		pages, err = ocrTracker.FailingPages(cmd.Context(), args[0])
	} else {
		pages, err = ocrTracker.ListPages(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if ocrJSON {
		return printJSON(cmd, pages)
	}

	if len(pages) == 0 {
		cmd.Println("No pages recorded.")
		return nil
	}

	for i := range pages {
		p := &pages[i]
		empty := ""
		if p.Quality.LooksEmpty {
			empty = " (empty)"
		}
		cmd.Printf("  %4d  chars=%-6d alpha=%.2f printable=%.2f  %s%s\n",
			p.PageNumber, p.Quality.Chars, p.Quality.AlphaRatio, p.Quality.PrintableRatio, p.ConsensusURI, empty)
	}
	return nil
}
