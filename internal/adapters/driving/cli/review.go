package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Manage the human review queue",
}

var reviewEnqueueCmd = &cobra.Command{
	Use:   "enqueue [doc-id] [pipeline-version] [reason]",
	Short: "Escalate a document version for review",
	Args:  cobra.ExactArgs(3),
	RunE:  runReviewEnqueue,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review entries",
	Args:  cobra.NoArgs,
	RunE:  runReviewList,
}

var reviewGetCmd = &cobra.Command{
	Use:   "get [review-id]",
	Short: "Show a review entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewGet,
}

var reviewResolveCmd = &cobra.Command{
	Use:   "resolve [review-id]",
	Short: "Resolve an open review entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewResolve,
}

var (
	reviewFilter domain.ReviewFilter
	reviewStatus string
	reviewJSON   bool
)

func init() {
	reviewListCmd.Flags().StringVar(&reviewFilter.DocumentID, "document", "", "filter by document")
	reviewListCmd.Flags().StringVar(&reviewStatus, "status", string(domain.ReviewOpen), "filter by status (open, resolved, or empty for all)")
	reviewListCmd.Flags().IntVarP(&reviewFilter.Limit, "limit", "n", 50, "maximum number of entries")
	reviewListCmd.Flags().BoolVar(&reviewJSON, "json", false, "output as JSON")
	reviewGetCmd.Flags().BoolVar(&reviewJSON, "json", false, "output as JSON")

	reviewCmd.AddCommand(reviewEnqueueCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewGetCmd)
	reviewCmd.AddCommand(reviewResolveCmd)
	rootCmd.AddCommand(reviewCmd)
}

func runReviewEnqueue(cmd *cobra.Command, args []string) error {
	if reviewQueue == nil {
		return errNotConfigured("review queue")
	}

	entry, err := reviewQueue.Enqueue(cmd.Context(), driving.EnqueueReviewRequest{
		DocumentID:      args[0],
		PipelineVersion: args[1],
		Reason:          args[2],
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue review: %w", err)
	}

	cmd.Printf("Queued review %s for %s@%s\n", entry.ID, entry.DocumentID, entry.PipelineVersion)
	return nil
}

func runReviewList(cmd *cobra.Command, _ []string) error {
	if reviewQueue == nil {
		return errNotConfigured("review queue")
	}

	filter := reviewFilter
	filter.Status = domain.ReviewStatus(reviewStatus)

	entries, err := reviewQueue.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}

	if reviewJSON {
		return printJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("Review queue is empty.")
		return nil
	}

	for i := range entries {
		e := &entries[i]
		cmd.Printf("  %s  %-8s %s@%s  %s\n", e.ID, e.Status, e.DocumentID, e.PipelineVersion, e.Reason)
	}
	return nil
}

func runReviewGet(cmd *cobra.Command, args []string) error {
	if reviewQueue == nil {
		return errNotConfigured("review queue")
	}

	entry, err := reviewQueue.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get review: %w", err)
	}

	if reviewJSON {
		return printJSON(cmd, entry)
	}

	cmd.Printf("Review: %s\n\n", entry.ID)
	cmd.Printf("  Document: %s\n", entry.DocumentID)
	cmd.Printf("  Version:  %s\n", entry.PipelineVersion)
	cmd.Printf("  Reason:   %s\n", entry.Reason)
	cmd.Printf("  Status:   %s\n", entry.Status)
	cmd.Printf("  Created:  %s\n", formatTime(entry.CreatedAt))
	cmd.Printf("  Resolved: %s\n", formatTime(entry.ResolvedAt))
	return nil
}

func runReviewResolve(cmd *cobra.Command, args []string) error {
	if reviewQueue == nil {
		return errNotConfigured("review queue")
	}

	entry, err := reviewQueue.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve review: %w", err)
	}

	cmd.Printf("Review %s resolved.\n", entry.ID)
	return nil
}
