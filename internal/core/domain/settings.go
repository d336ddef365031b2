package domain

// Configuration keys in dot notation, as flattened by the config store.
const (
	KeyStorageDataDir       = "storage.data_dir"
	KeyLogVerbose           = "log.verbose"
	KeyMCPPort              = "mcp.port"
	KeySearchDefaultLimit   = "search.default_limit"
	KeyOCRMinCharsPerPage   = "ocr.min_chars_per_page"
	KeyOCRMinAlphaRatio     = "ocr.min_alpha_ratio"
	KeyOCRMinPrintableRatio = "ocr.min_printable_ratio"
	KeyExtractionMinChars   = "extraction.min_chars"
	KeyExtractionMinAlpha   = "extraction.min_alpha_ratio"
)

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DataDir holds the ledger database. Empty means ~/.ragledger/data.
	DataDir string
}

// SearchSettings holds projection search behaviour.
type SearchSettings struct {
	// DefaultLimit caps search results when callers pass no limit.
	DefaultLimit int
}

// MCPSettings holds MCP server configuration.
type MCPSettings struct {
	// Port serves MCP over HTTP when non-zero; zero uses stdio.
	Port int
}

// Settings holds all application settings.
type Settings struct {
	Storage    StorageSettings
	Search     SearchSettings
	MCP        MCPSettings
	OCR        QualityGate
	Extraction ExtractionGate

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Search:     SearchSettings{DefaultLimit: 10},
		OCR:        DefaultQualityGate(),
		Extraction: DefaultExtractionGate(),
	}
}
