package db

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptyData indicates that the source has no header row
	ErrEmptyData = errors.New("empty data source")
	// ErrInvalidData indicates a record that does not fit the header
	ErrInvalidData = errors.New("invalid data format")
	// ErrUnsupportedFormat indicates a file type the reader does not handle
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

const (
	extCSV  = ".csv"
	extTSV  = ".tsv"
	extXLSX = ".xlsx"
)

// Dataset is tabular data read from a file: one header row plus records.
// Every record has exactly len(Header) cells.
type Dataset struct {
	Header  []string
	Records [][]string
}

// ReadDataset reads a CSV, TSV or XLSX file, optionally compressed with
// gzip, bzip2, xz or zstd. The first row is the header. Delimited text may be
// UTF-8 (with or without BOM) or Windows-1252.
func ReadDataset(path string) (*Dataset, error) {
	base, _ := trimCompressionExtension(path)
	ext := strings.ToLower(filepath.Ext(base))

	reader, cleanup, err := openDecompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cleanup() }()

	var rows [][]string
	switch ext {
	case extCSV:
		rows, err = readDelimited(reader, ',')
	case extTSV:
		rows, err = readDelimited(reader, '\t')
	case extXLSX:
		rows, err = readFirstSheet(reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	return newDataset(rows)
}

// TableNameFromPath derives a table name from a file path:
// "/data/sales.csv.gz" becomes "sales".
func TableNameFromPath(path string) string {
	base, _ := trimCompressionExtension(filepath.Base(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	text, err := decodeText(r)
	if err != nil {
		return nil, err
	}
	csvReader := csv.NewReader(text)
	csvReader.Comma = comma
	csvReader.FieldsPerRecord = -1
	return csvReader.ReadAll()
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns r as UTF-8. A leading BOM is dropped and input that is
// not valid UTF-8 is read as Windows-1252, the usual encoding of
// spreadsheet CSV exports.
func decodeText(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return bytes.NewReader(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return bytes.NewReader(decoded), nil
}

func readFirstSheet(r io.Reader) ([][]string, error) {
	// excelize needs random access, so the (possibly decompressed) stream is buffered
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	xlsxFile, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = xlsxFile.Close() }()

	sheets := xlsxFile.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return xlsxFile.GetRows(sheets[0])
}

func newDataset(rows [][]string) (*Dataset, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyData
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrInvalidData, i+2, len(row), len(header))
		}
		// Spreadsheets and ragged CSVs drop trailing empty cells
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		records = append(records, row)
	}

	return &Dataset{Header: header, Records: records}, nil
}
