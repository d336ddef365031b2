package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var enrichmentCmd = &cobra.Command{
	Use:   "enrichment",
	Short: "Gate model-proposed chunk metadata",
	Long: `Propose, accept and reject chunk enrichments. An enrichment is accepted
only while the chunk still has the hash it was computed against.`,
}

var enrichmentProposeCmd = &cobra.Command{
	Use:   "propose [chunk-id] [enrichment-version] [model]",
	Short: "Propose an enrichment for a chunk",
	Args:  cobra.ExactArgs(3),
	RunE:  runEnrichmentPropose,
}

var enrichmentAcceptCmd = &cobra.Command{
	Use:   "accept [chunk-id] [enrichment-version]",
	Short: "Accept and apply an enrichment",
	Args:  cobra.ExactArgs(2),
	RunE:  runEnrichmentAccept,
}

var enrichmentRejectCmd = &cobra.Command{
	Use:   "reject [chunk-id] [enrichment-version] [reason]",
	Short: "Reject an enrichment",
	Args:  cobra.ExactArgs(3),
	RunE:  runEnrichmentReject,
}

var enrichmentListCmd = &cobra.Command{
	Use:   "list [chunk-id]",
	Short: "List the enrichments of a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnrichmentList,
}

var enrichmentCandidatesCmd = &cobra.Command{
	Use:   "candidates [pipeline-version] [enrichment-version]",
	Short: "List chunks that need enrichment",
	Args:  cobra.ExactArgs(2),
	RunE:  runEnrichmentCandidates,
}

var (
	enrChunkSHA   string
	enrInputSHA   string
	enrConfidence float64
	enrOutput     string
	enrFilter     domain.CandidateFilter
	enrJSON       bool
)

func init() {
	enrichmentProposeCmd.Flags().StringVar(&enrChunkSHA, "chunk-sha256", "", "chunk hash the enrichment was computed against")
	enrichmentProposeCmd.Flags().StringVar(&enrInputSHA, "input-sha256", "", "hash of the full model input")
	enrichmentProposeCmd.Flags().Float64Var(&enrConfidence, "confidence", 0, "model confidence between 0 and 1")
	enrichmentProposeCmd.Flags().StringVar(&enrOutput, "output", "", "enrichment output as a JSON object")
	_ = enrichmentProposeCmd.MarkFlagRequired("chunk-sha256")
	_ = enrichmentProposeCmd.MarkFlagRequired("input-sha256")

	enrichmentListCmd.Flags().BoolVar(&enrJSON, "json", false, "output as JSON")
	enrichmentCandidatesCmd.Flags().BoolVar(&enrJSON, "json", false, "output as JSON")
	enrichmentCandidatesCmd.Flags().StringVar(&enrFilter.Source, "source", "", "only documents from this source")
	enrichmentCandidatesCmd.Flags().IntVarP(&enrFilter.Limit, "limit", "n", 100, "maximum number of candidates")
	enrichmentCandidatesCmd.Flags().BoolVar(&enrFilter.IncludeRejected, "include-rejected", false, "include pending and rejected enrichments")

	enrichmentCmd.AddCommand(enrichmentProposeCmd)
	enrichmentCmd.AddCommand(enrichmentAcceptCmd)
	enrichmentCmd.AddCommand(enrichmentRejectCmd)
	enrichmentCmd.AddCommand(enrichmentListCmd)
	enrichmentCmd.AddCommand(enrichmentCandidatesCmd)
	rootCmd.AddCommand(enrichmentCmd)
}

func runEnrichmentPropose(cmd *cobra.Command, args []string) error {
	if enrichmentLedger == nil {
		return errNotConfigured("enrichment ledger")
	}

	var output domain.EnrichmentOutput
	if err := decodeJSONFlag("output", enrOutput, &output); err != nil {
		return err
	}

	req := driving.ProposeEnrichmentRequest{
		ChunkID:           args[0],
		EnrichmentVersion: args[1],
		Model:             args[2],
		ChunkSHA256:       enrChunkSHA,
		InputSHA256:       enrInputSHA,
		Output:            output,
	}
	if cmd.Flags().Changed("confidence") {
		c := enrConfidence
		req.Confidence = &c
	}

	e, err := enrichmentLedger.Propose(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to propose enrichment: %w", err)
	}

	cmd.Printf("Proposed enrichment %s for chunk %s.\n", e.EnrichmentVersion, e.ChunkID)
	return nil
}

func runEnrichmentAccept(cmd *cobra.Command, args []string) error {
	if enrichmentLedger == nil {
		return errNotConfigured("enrichment ledger")
	}

	e, err := enrichmentLedger.Accept(cmd.Context(), args[0], args[1])
	if errors.Is(err, domain.ErrStaleEnrichment) {
		return fmt.Errorf("chunk %s changed since enrichment %s was computed: %w", args[0], args[1], err)
	}
	if err != nil {
		return fmt.Errorf("failed to accept enrichment: %w", err)
	}

	cmd.Printf("Accepted enrichment %s for chunk %s.\n", e.EnrichmentVersion, e.ChunkID)
	return nil
}

func runEnrichmentReject(cmd *cobra.Command, args []string) error {
	if enrichmentLedger == nil {
		return errNotConfigured("enrichment ledger")
	}

	e, err := enrichmentLedger.Reject(cmd.Context(), args[0], args[1], args[2])
	if err != nil {
		return fmt.Errorf("failed to reject enrichment: %w", err)
	}

	cmd.Printf("Rejected enrichment %s for chunk %s.\n", e.EnrichmentVersion, e.ChunkID)
	return nil
}

func enrichmentState(e *domain.ChunkEnrichment) string {
	switch {
	case e.IsRejected():
		return "rejected"
	case e.Accepted:
		return "accepted"
	default:
		return "proposed"
	}
}

func runEnrichmentList(cmd *cobra.Command, args []string) error {
	if enrichmentLedger == nil {
		return errNotConfigured("enrichment ledger")
	}

	list, err := enrichmentLedger.ListForChunk(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list enrichments: %w", err)
	}

	if enrJSON {
		return printJSON(cmd, list)
	}

	if len(list) == 0 {
		cmd.Println("No enrichments found.")
		return nil
	}

	for i := range list {
		e := &list[i]
		cmd.Printf("  %-12s %-9s %s  %s\n", e.EnrichmentVersion, enrichmentState(e), e.Model, orDash(e.Output.Title))
	}
	return nil
}

func runEnrichmentCandidates(cmd *cobra.Command, args []string) error {
	if enrichmentLedger == nil {
		return errNotConfigured("enrichment ledger")
	}

	filter := enrFilter
	filter.PipelineVersion = args[0]
	filter.EnrichmentVersion = args[1]

	candidates, err := enrichmentLedger.Candidates(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	if enrJSON {
		return printJSON(cmd, candidates)
	}

	if len(candidates) == 0 {
		cmd.Println("No chunks need enrichment.")
		return nil
	}

	for i := range candidates {
		c := &candidates[i]
		reason := "new"
		if c.Existing != nil {
			reason = enrichmentState(c.Existing)
			if c.Existing.IsStale(c.ChunkSHA256) {
				reason = "stale"
			}
		}
		cmd.Printf("  %s  #%-4d %-9s %s\n", c.ChunkID, c.ChunkIndex, reason, strings.TrimSpace(c.TextURI))
	}
	return nil
}
