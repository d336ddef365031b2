package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches the document projection. Every query term must appear in the
title, author or searchable text. The most recently refreshed documents
come first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Maintain the search projection",
}

var projectionRefreshCmd = &cobra.Command{
	Use:   "refresh [doc-id]",
	Short: "Rebuild the search projection of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectionRefresh,
}

var projectionGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show the search projection of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectionGet,
}

var (
	projectionPreview  string
	projectionTextFile string
)

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)

	projectionRefreshCmd.Flags().StringVar(&projectionPreview, "preview", "", "preview text")
	projectionRefreshCmd.Flags().StringVar(&projectionTextFile, "text-file", "", "searchable text (- for stdin)")
	projectionCmd.AddCommand(projectionRefreshCmd)
	projectionCmd.AddCommand(projectionGetCmd)
	rootCmd.AddCommand(projectionCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchProjection == nil {
		return errNotConfigured("search projection")
	}

	hits, err := searchProjection.Search(cmd.Context(), strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, hits)
	}

	return outputSearchTable(cmd, hits)
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		title := hits[i].Title
		if title == "" {
			title = hits[i].DocumentID
		}

		cmd.Printf("  [%d] %s\n", i+1, title)
		cmd.Printf("      ID: %s  Updated: %s\n", hits[i].DocumentID, formatTime(hits[i].UpdatedAt))
		if hits[i].PreviewText != "" {
			cmd.Printf("      %s\n", hits[i].PreviewText)
		}
		cmd.Println()
	}
	return nil
}

func runProjectionRefresh(cmd *cobra.Command, args []string) error {
	if searchProjection == nil {
		return errNotConfigured("search projection")
	}

	req := driving.RefreshProjectionRequest{
		DocumentID:  args[0],
		PreviewText: projectionPreview,
	}
	if projectionTextFile != "" {
		text, err := readTextArg(cmd, projectionTextFile)
		if err != nil {
			return err
		}
		req.SearchableText = text
	}

	p, err := searchProjection.Refresh(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to refresh projection: %w", err)
	}

	cmd.Printf("Refreshed projection of %s (%d chars).\n", p.DocumentID, len(p.SearchText))
	return nil
}

func runProjectionGet(cmd *cobra.Command, args []string) error {
	if searchProjection == nil {
		return errNotConfigured("search projection")
	}

	p, err := searchProjection.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get projection: %w", err)
	}

	cmd.Printf("Projection: %s\n\n", p.DocumentID)
	cmd.Printf("  Updated: %s\n", formatTime(p.UpdatedAt))
	cmd.Printf("  Preview: %s\n", orDash(p.PreviewText))
	cmd.Printf("  Text:    %s\n", orDash(p.SearchText))
	return nil
}
