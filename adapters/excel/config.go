package excel

// ReaderConfig controls how tables are parsed
type ReaderConfig struct {
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string
	// Comma is the CSV field delimiter; zero means ','
	Comma rune
}

// DefaultReaderConfig returns a comma-separated, first-sheet configuration
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{Comma: ','}
}
