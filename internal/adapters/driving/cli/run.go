package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track processing runs",
	Long: `Start, finish and inspect processing runs. Runs are created idempotently:
starting a run with a known idempotency key returns the existing run.`,
}

var runStartCmd = &cobra.Command{
	Use:   "start [correlation-id] [pipeline-version]",
	Short: "Start a run or return the existing one",
	Long: `Starts a pending run for an idempotency key. The key is taken from --key,
or derived from --document and --fingerprint as version:document:fingerprint.`,
	Args: cobra.ExactArgs(2),
	RunE: runRunStart,
}

var runRunningCmd = &cobra.Command{
	Use:   "running [run-id]",
	Short: "Mark a pending run as running",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunRunning,
}

var runFinishCmd = &cobra.Command{
	Use:   "finish [run-id] [succeeded|failed|cancelled]",
	Short: "Finish a run",
	Args:  cobra.ExactArgs(2),
	RunE:  runRunFinish,
}

var runGetCmd = &cobra.Command{
	Use:   "get [run-id]",
	Short: "Show a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunGet,
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunList,
}

var runLatestCmd = &cobra.Command{
	Use:   "latest [doc-id] [pipeline-version]",
	Short: "Show the most recent run of a document version",
	Args:  cobra.ExactArgs(2),
	RunE:  runRunLatest,
}

var runErrorsCmd = &cobra.Command{
	Use:   "errors [run-id]",
	Short: "List the errors of a run, or of a correlation with --correlation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunErrors,
}

var runDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a run and its errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunDelete,
}

var errorCmd = &cobra.Command{
	Use:   "error",
	Short: "Record processing errors",
}

var errorRecordCmd = &cobra.Command{
	Use:   "record [run-id] [step] [message]",
	Short: "Append an error to a run",
	Long:  `Appends a structured error to a run. The run's status is never changed.`,
	Args:  cobra.ExactArgs(3),
	RunE:  runErrorRecord,
}

var (
	runDocument    string
	runKey         string
	runFingerprint string
	runMetrics     string
	runJSON        bool
	runFilter      domain.RunFilter
	runStatus      string
	errCorrelation string
	errLimit       int
	errCode        string
	errDetails     string
)

func init() {
	runStartCmd.Flags().StringVar(&runDocument, "document", "", "document ID")
	runStartCmd.Flags().StringVar(&runKey, "key", "", "idempotency key")
	runStartCmd.Flags().StringVar(&runFingerprint, "fingerprint", "", "content fingerprint used to derive the key")
	runFinishCmd.Flags().StringVar(&runMetrics, "metrics", "", "run metrics as a JSON object")

	runGetCmd.Flags().BoolVar(&runJSON, "json", false, "output as JSON")
	runListCmd.Flags().BoolVar(&runJSON, "json", false, "output as JSON")
	runListCmd.Flags().StringVar(&runFilter.CorrelationID, "correlation", "", "filter by correlation ID")
	runListCmd.Flags().StringVar(&runFilter.PipelineVersion, "version", "", "filter by pipeline version")
	runListCmd.Flags().StringVar(&runFilter.DocumentID, "document", "", "filter by document")
	runListCmd.Flags().StringVar(&runStatus, "status", "", "filter by status")
	runListCmd.Flags().IntVarP(&runFilter.Limit, "limit", "n", 20, "maximum number of runs")

	runErrorsCmd.Flags().StringVar(&errCorrelation, "correlation", "", "list errors across a correlation ID")
	runErrorsCmd.Flags().IntVarP(&errLimit, "limit", "n", 0, "maximum number of errors")

	errorRecordCmd.Flags().StringVar(&errCode, "code", "", "error code")
	errorRecordCmd.Flags().StringVar(&errDetails, "details", "", "error details as a JSON object")

	runCmd.AddCommand(runStartCmd)
	runCmd.AddCommand(runRunningCmd)
	runCmd.AddCommand(runFinishCmd)
	runCmd.AddCommand(runGetCmd)
	runCmd.AddCommand(runListCmd)
	runCmd.AddCommand(runLatestCmd)
	runCmd.AddCommand(runErrorsCmd)
	runCmd.AddCommand(runDeleteCmd)
	errorCmd.AddCommand(errorRecordCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(errorCmd)
}

func runRunStart(cmd *cobra.Command, args []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	key := runKey
	if key == "" && runDocument != "" && runFingerprint != "" {
		key = domain.IdempotencyKey(args[1], runDocument, runFingerprint)
	}

	run, created, err := runTracker.StartRun(cmd.Context(), driving.StartRunRequest{
		CorrelationID:   args[0],
		PipelineVersion: args[1],
		IdempotencyKey:  key,
		DocumentID:      runDocument,
	})
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	if created {
		cmd.Printf("Started run %s\n", run.ID)
	} else {
		cmd.Printf("Run %s already exists (%s)\n", run.ID, run.Status)
	}
	return nil
}

func runRunRunning(cmd *cobra.Command, args []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	run, err := runTracker.MarkRunning(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}

	cmd.Printf("Run %s is %s.\n", run.ID, run.Status)
	return nil
}

func runRunFinish(cmd *cobra.Command, args []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	var metrics domain.RunMetrics
	if err := decodeJSONFlag("metrics", runMetrics, &metrics); err != nil {
		return err
	}

	run, err := runTracker.FinishRun(cmd.Context(), driving.FinishRunRequest{
		RunID:   args[0],
		Status:  domain.RunStatus(args[1]),
		Metrics: metrics,
	})
	if errors.Is(err, domain.ErrAlreadyTerminal) {
		return fmt.Errorf("run %s already finished: %w", args[0], err)
	}
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	cmd.Printf("Run %s %s.\n", run.ID, run.Status)
	return nil
}

func runRunGet(cmd *cobra.Command, args []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	run, err := runTracker.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if runJSON {
		return printJSON(cmd, run)
	}
	printRun(cmd, run)
	return nil
}

func runRunLatest(cmd *cobra.Command, args []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	run, err := runTracker.LatestRunFor(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get latest run: %w", err)
	}

	printRun(cmd, run)
	return nil
}

func printRun(cmd *cobra.Command, run *domain.ProcessingRun) {
	cmd.Printf("Run: %s\n\n", run.ID)
	cmd.Printf("  Status:      %s\n", run.Status)
	cmd.Printf("  Correlation: %s\n", run.CorrelationID)
	cmd.Printf("  Version:     %s\n", run.PipelineVersion)
	cmd.Printf("  Document:    %s\n", orDash(run.DocumentID))
	cmd.Printf("  Key:         %s\n", run.IdempotencyKey)
	cmd.Printf("  Started:     %s\n", formatTime(run.StartedAt))
	cmd.Printf("  Finished:    %s\n", formatTime(run.FinishedAt))
}

func runRunList(cmd *cobra.Command, _ []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	filter := runFilter
	filter.Status = domain.RunStatus(runStatus)

	runs, err := runTracker.ListRuns(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runJSON {
		return printJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs found.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("  %s  %-10s %s  %s  %s\n", r.ID, r.Status, r.PipelineVersion, orDash(r.DocumentID), formatTime(r.StartedAt))
	}
	return nil
}

func runRunErrors(cmd *cobra.Command, args []string) error {
	if errorLedger == nil {
		return errNotConfigured("error ledger")
	}

	var (
		errs []domain.ProcessingError
		err  error
	)
	switch {
	case errCorrelation != "":
		errs, err = errorLedger.ErrorsForCorrelation(cmd.Context(), errCorrelation, errLimit)
	case len(args) == 1:
		errs, err = errorLedger.ErrorsForRun(cmd.Context(), args[0])
	default:
		return errors.New("a run ID or --correlation is required")
	}
	if err != nil {
		return fmt.Errorf("failed to list errors: %w", err)
	}

	if len(errs) == 0 {
		cmd.Println("No errors recorded.")
		return nil
	}

	for i := range errs {
		e := &errs[i]
		cmd.Printf("  %s  run=%s  %s/%s: %s\n", formatTime(e.CreatedAt), e.RunID, e.Step, orDash(e.Code), e.Message)
	}
	return nil
}

func runRunDelete(cmd *cobra.Command, args []string) error {
	if runTracker == nil {
		return errNotConfigured("run tracker")
	}

	if err := runTracker.DeleteRun(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	cmd.Printf("Run %s deleted.\n", args[0])
	return nil
}

func runErrorRecord(cmd *cobra.Command, args []string) error {
	if errorLedger == nil {
		return errNotConfigured("error ledger")
	}

	var details domain.ErrorDetails
	if err := decodeJSONFlag("details", errDetails, &details); err != nil {
		return err
	}

	recorded, err := errorLedger.RecordError(cmd.Context(), driving.RecordErrorRequest{
		RunID:   args[0],
		Step:    args[1],
		Message: args[2],
		Code:    errCode,
		Details: details,
	})
	if err != nil {
		return fmt.Errorf("failed to record error: %w", err)
	}

	cmd.Printf("Recorded error %s on run %s.\n", recorded.ID, recorded.RunID)
	return nil
}
