package excel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"soilqc/adapters/api"
	"soilqc/internal"
	"soilqc/internal/errors"
)

var quietLogger = internal.NewLogger(internal.LogLevelError)

// buildWorkbook returns xlsx bytes with a decoy first sheet and the data on "Lab"
func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"notes"}))
	_, err := f.NewSheet("Lab")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Lab", "A1", &[]interface{}{"Sample ID", "pH", "Carbon"}))
	require.NoError(t, f.SetSheetRow("Lab", "A2", &[]interface{}{"North_1", 6.5, 120}))
	require.NoError(t, f.SetSheetRow("Lab", "A3", &[]interface{}{"North_1Dup", 6.4, 118}))
	require.NoError(t, f.SetSheetRow("Lab", "A4", &[]interface{}{"South_2", 7.1, ""}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDetectFileType(t *testing.T) {
	assert.Equal(t, FileTypeCSV, DetectFileType("data/Kansas_Duplicates.csv", nil))
	assert.Equal(t, FileTypeXLSX, DetectFileType("soil.XLSX", nil))
	assert.Equal(t, FileTypeXLSX, DetectFileType("https://example.com/raw/Soil.xlsx?raw=true", nil))
	assert.Equal(t, FileTypeXLSX, DetectFileType("https://example.com/download", []byte("PK\x03\x04rest")))
	assert.Equal(t, FileTypeCSV, DetectFileType("https://example.com/download", []byte("a,b\n1,2\n")))
}

func TestParse_CSV(t *testing.T) {
	r := NewDataReader(DefaultReaderConfig(), nil, quietLogger)
	content := []byte("\xef\xbb\xbfSample ID, pH ,Carbon\nNorth_1,6.5,120\n,,\nSouth_2,7.1\n")

	tbl, err := r.Parse("soil.csv", content, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample ID", "pH", "Carbon"}, tbl.Headers)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "North_1", tbl.Rows[0]["Sample ID"])
	assert.Equal(t, "", tbl.Rows[1]["Carbon"])
}

func TestParse_CSVSemicolon(t *testing.T) {
	r := NewDataReader(ReaderConfig{Comma: ';'}, nil, quietLogger)
	tbl, err := r.Parse("soil.csv", []byte("Field;pH\nA;6.5\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "6.5", tbl.Rows[0]["pH"])
}

func TestParse_XLSXNamedSheet(t *testing.T) {
	r := NewDataReader(DefaultReaderConfig(), nil, quietLogger)

	tbl, err := r.Parse("soil.xlsx", buildWorkbook(t), "Lab")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample ID", "pH", "Carbon"}, tbl.Headers)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, "North_1Dup", tbl.Rows[1]["Sample ID"])
	assert.InDelta(t, 6.5, tbl.Float(0, "pH"), 1e-12)
	assert.Equal(t, "", tbl.Rows[2]["Carbon"])
}

func TestParse_XLSXDefaultsToFirstSheet(t *testing.T) {
	r := NewDataReader(DefaultReaderConfig(), nil, quietLogger)

	tbl, err := r.Parse("soil.xlsx", buildWorkbook(t), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, tbl.Headers)
	assert.Equal(t, 0, tbl.Len())
}

func TestParse_XLSXUnknownSheet(t *testing.T) {
	r := NewDataReader(DefaultReaderConfig(), nil, quietLogger)

	_, err := r.Parse("soil.xlsx", buildWorkbook(t), "Field")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "Lab")
}

func TestParse_Empty(t *testing.T) {
	r := NewDataReader(DefaultReaderConfig(), nil, quietLogger)
	_, err := r.Parse("soil.csv", nil, "")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soil.xlsx")
	require.NoError(t, os.WriteFile(path, buildWorkbook(t), 0o644))

	r := NewDataReader(ReaderConfig{Sheet: "Lab"}, nil, quietLogger)
	tbl, err := r.Load(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestLoad_RemoteCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Sample ID,pH\nNorth_1,6.5\n"))
	}))
	defer srv.Close()

	fetcher := api.NewFetcher(api.DefaultFetchConfig(), quietLogger)
	r := NewDataReader(DefaultReaderConfig(), fetcher, quietLogger)

	tbl, err := r.Load(context.Background(), srv.URL+"/Kansas_Duplicates.csv", "")
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	noFetch := NewDataReader(DefaultReaderConfig(), nil, quietLogger)
	_, err = noFetch.Load(context.Background(), srv.URL+"/x.csv", "")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
