package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"soilqc/adapters/api"
	"soilqc/domain/qaqc"
	"soilqc/internal"
	"soilqc/internal/errors"
	"soilqc/ports"
)

// DataReader loads observation tables from CSV or Excel workbooks, local or remote
type DataReader struct {
	config  ReaderConfig
	fetcher ports.Fetcher
	logger  *internal.Logger
}

var _ ports.TableSource = (*DataReader)(nil)

// NewDataReader creates a reader; fetcher may be nil when only local paths are read
func NewDataReader(config ReaderConfig, fetcher ports.Fetcher, logger *internal.Logger) *DataReader {
	if config.Comma == 0 {
		config.Comma = ','
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{config: config, fetcher: fetcher, logger: logger.With("DataReader")}
}

// Load reads location (path or http(s) URL). sheet overrides the configured sheet.
func (r *DataReader) Load(ctx context.Context, location, sheet string) (*qaqc.Table, error) {
	content, err := api.ReadLocation(ctx, r.fetcher, location)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = r.config.Sheet
	}
	return r.Parse(location, content, sheet)
}

// Parse decodes content already in memory; location is only used for type detection and messages
func (r *DataReader) Parse(location string, content []byte, sheet string) (*qaqc.Table, error) {
	fileType := DetectFileType(location, content)
	r.logger.Info("Starting to read %s file: %s", fileType, location)

	var rows [][]string
	var err error
	switch fileType {
	case FileTypeXLSX:
		rows, err = r.readExcelRows(content, sheet)
	default:
		if sheet != "" {
			r.logger.Debug("sheet %q ignored for CSV input %s", sheet, location)
		}
		rows, err = r.readCSVRows(content)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", location)
	}
	return r.processRows(fileType, rows)
}

// readExcelRows reads the named sheet, or the first sheet when name is empty
func (r *DataReader) readExcelRows(content []byte, name string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.InvalidInput("failed to open Excel workbook: " + err.Error())
	}
	defer f.Close()
	r.logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("workbook has no sheets")
	}
	if name == "" {
		name = sheets[0]
	} else if !containsString(sheets, name) {
		return nil, errors.InvalidInputf("sheet %s not found (available: %s)", quote(name), strings.Join(sheets, ", "))
	}

	readStart := time.Now()
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", quote(name))
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", name, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.Comma = r.config.Comma
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput("malformed CSV: " + err.Error())
	}
	r.logger.Debug("CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw string rows into a table, dropping fully blank lines
func (r *DataReader) processRows(fileType FileType, rows [][]string) (*qaqc.Table, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidInput("file has no header row")
	}
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		data = append(data, row)
	}
	t := qaqc.NewTable(rows[0], data)

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(string(fileType)), len(t.Headers), t.Len())
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func quote(s string) string {
	return "\"" + s + "\""
}
