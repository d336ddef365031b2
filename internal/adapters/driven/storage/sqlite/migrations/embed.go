// Package migrations embeds the SQL schema of the ledger database.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// FS holds the migration files, named NNN_description.up.sql / .down.sql.
//
//go:embed *.sql
var FS embed.FS

// Migration is one forward schema step.
type Migration struct {
	Version int
	Name    string
}

// Up lists the forward migrations in fsys ordered by version. Files without
// a numeric prefix are ignored.
func Up(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		out = append(out, Migration{Version: version, Name: name})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Latest returns the schema version the embedded migrations lead to.
func Latest() int {
	up, err := Up(FS)
	if err != nil || len(up) == 0 {
		return 0
	}
	return up[len(up)-1].Version
}
