package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/storage/sqlite/migrations"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipBootstrap: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("ragledger version %s (schema %d)\n", version, migrations.Latest())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
