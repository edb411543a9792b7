package excel

// ExcelConfig holds configuration for a file-backed event source
type ExcelConfig struct {
	FilePath        string `json:"file_path"`
	Sheet           string `json:"sheet"`
	TimestampColumn string `json:"timestamp_column"`
	StreamColumn    string `json:"stream_column"` // empty means auto-detect
}

// DefaultExcelConfig returns sensible defaults for event files
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:           "Sheet1",
		TimestampColumn: "created_at",
	}
}
