package excel

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"
)

// FileType identifies the tabular container format
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

var zipMagic = []byte("PK\x03\x04")

// DetectFileType picks the format from the location's extension, falling
// back to sniffing the content for the zip signature used by .xlsx files.
func DetectFileType(location string, content []byte) FileType {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv", ".txt":
		return FileTypeCSV
	case ".xlsx", ".xlsm", ".xltx":
		return FileTypeXLSX
	}
	if bytes.HasPrefix(content, zipMagic) {
		return FileTypeXLSX
	}
	return FileTypeCSV
}
