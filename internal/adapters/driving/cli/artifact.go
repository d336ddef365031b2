package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Inspect chunk sets",
}

var chunksListCmd = &cobra.Command{
	Use:   "list [doc-id] [pipeline-version]",
	Short: "List the chunks of a document version",
	Args:  cobra.ExactArgs(2),
	RunE:  runChunksList,
}

var chunksGetCmd = &cobra.Command{
	Use:   "get [chunk-id]",
	Short: "Show a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunksGet,
}

var extractionCmd = &cobra.Command{
	Use:   "extraction",
	Short: "Inspect and validate extractions",
}

var extractionListCmd = &cobra.Command{
	Use:   "list [doc-id]",
	Short: "List the extractions of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtractionList,
}

var extractionValidateCmd = &cobra.Command{
	Use:   "validate [doc-id] [pipeline-version] [text-file]",
	Short: "Check extracted text quality",
	Long: `Checks extracted text against the quality gate and enqueues one review entry
per issue found. Use "-" as text-file to read from stdin.`,
	Args: cobra.ExactArgs(3),
	RunE: runExtractionValidate,
}

var (
	chunksJSON            bool
	extractionContentType string
)

func init() {
	chunksListCmd.Flags().BoolVar(&chunksJSON, "json", false, "output as JSON")
	chunksGetCmd.Flags().BoolVar(&chunksJSON, "json", false, "output as JSON")
	extractionValidateCmd.Flags().StringVar(&extractionContentType, "content-type", "", "MIME type of the source file")

	chunksCmd.AddCommand(chunksListCmd)
	chunksCmd.AddCommand(chunksGetCmd)
	extractionCmd.AddCommand(extractionListCmd)
	extractionCmd.AddCommand(extractionValidateCmd)
	rootCmd.AddCommand(chunksCmd)
	rootCmd.AddCommand(extractionCmd)
}

func runChunksList(cmd *cobra.Command, args []string) error {
	if artifactService == nil {
		return errNotConfigured("artifact service")
	}

	chunks, err := artifactService.ListChunks(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	if chunksJSON {
		return printJSON(cmd, chunks)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}

	for _, c := range chunks {
		cmd.Printf("  [%d] %s  tokens=%d  pages=%d-%d\n", c.Index, c.ID, c.TokenCount, c.PageStart, c.PageEnd)
	}
	cmd.Printf("\nTotal: %d chunks\n", len(chunks))
	return nil
}

func runChunksGet(cmd *cobra.Command, args []string) error {
	if artifactService == nil {
		return errNotConfigured("artifact service")
	}

	c, err := artifactService.GetChunk(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	if chunksJSON {
		return printJSON(cmd, c)
	}

	cmd.Printf("Chunk: %s\n\n", c.ID)
	cmd.Printf("  Document: %s\n", c.DocumentID)
	cmd.Printf("  Version:  %s\n", c.PipelineVersion)
	cmd.Printf("  Index:    %d\n", c.Index)
	cmd.Printf("  SHA256:   %s\n", orDash(c.SHA256))
	cmd.Printf("  Text:     %s\n", orDash(c.TextURI))
	cmd.Printf("  Section:  %s\n", orDash(c.SectionPath))
	return nil
}

func runExtractionList(cmd *cobra.Command, args []string) error {
	if artifactService == nil {
		return errNotConfigured("artifact service")
	}

	extractions, err := artifactService.ListExtractions(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list extractions: %w", err)
	}

	if len(extractions) == 0 {
		cmd.Println("No extractions found.")
		return nil
	}

	for _, e := range extractions {
		cmd.Printf("  %s  %-10s %s  chars=%d\n", e.PipelineVersion, e.Extractor, orDash(e.ExtractedURI), e.Metrics.Chars)
	}
	return nil
}

func runExtractionValidate(cmd *cobra.Command, args []string) error {
	if artifactService == nil {
		return errNotConfigured("artifact service")
	}

	text, err := readTextArg(cmd, args[2])
	if err != nil {
		return err
	}

	issues, err := artifactService.ValidateExtraction(cmd.Context(), driving.ValidateExtractionRequest{
		DocumentID:      args[0],
		PipelineVersion: args[1],
		Text:            text,
		ContentType:     extractionContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to validate extraction: %w", err)
	}

	if len(issues) == 0 {
		cmd.Println("Extraction passed.")
		return nil
	}

	cmd.Printf("%d issue(s) queued for review:\n", len(issues))
	for _, issue := range issues {
		cmd.Printf("  %s\n", issue.Code)
	}
	return nil
}

// readTextArg reads a file, or stdin when path is "-".
func readTextArg(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return string(data), nil
}
