package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write configuration",
	Long: `Read and write values in config.toml using dot-notation keys such as
search.default_limit or ocr.min_chars_per_page.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show a configuration value, or the effective settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	if len(args) == 1 {
		value, ok := settingsService.Value(args[0])
		if !ok {
			return fmt.Errorf("%s is not set", args[0])
		}
		cmd.Printf("%v\n", value)
		return nil
	}

	s := settingsService.Get()
	cmd.Println("Effective settings:")
	cmd.Println()
	cmd.Printf("  storage.data_dir:            %s\n", orDash(s.Storage.DataDir))
	cmd.Printf("  search.default_limit:        %d\n", s.Search.DefaultLimit)
	cmd.Printf("  mcp.port:                    %d\n", s.MCP.Port)
	cmd.Printf("  ocr.min_chars_per_page:      %d\n", s.OCR.MinCharsPerPage)
	cmd.Printf("  ocr.min_alpha_ratio:         %.2f\n", s.OCR.MinAlphaRatio)
	cmd.Printf("  ocr.min_printable_ratio:     %.2f\n", s.OCR.MinPrintableRatio)
	cmd.Printf("  extraction.min_chars:        %d\n", s.Extraction.MinChars)
	cmd.Printf("  extraction.min_alpha_ratio:  %.2f\n", s.Extraction.MinAlphaRatio)
	cmd.Printf("  log.verbose:                 %t\n", s.Verbose)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	if err := settingsService.Set(args[0], file.ParseValue(args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	cmd.Println(orDash(settingsService.Path()))
	return nil
}
