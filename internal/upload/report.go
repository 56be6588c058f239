package upload

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"StockPulse/internal/model"
)

// DefaultSymbolColumn is the column holding exchange-qualified tickers.
const DefaultSymbolColumn = "Symbol"

// MaxReportBytes bounds the size of an uploaded or downloaded report.
const MaxReportBytes = 10 << 20

// Report is a parsed tabular upload.
type Report struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Symbols []string            `json:"symbols"`
}

// Head returns at most n rows for preview.
func (r *Report) Head(n int) []map[string]string {
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return r.Rows[:n]
}

// Parse reads a CSV or XLSX report and extracts the symbol column. The format is
// chosen by the filename extension. Any unusable input wraps model.ErrMalformedUpload.
func Parse(filename string, r io.Reader, column string) (*Report, error) {
	if column == "" {
		column = DefaultSymbolColumn
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxReportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", model.ErrMalformedUpload, err)
	}
	if len(data) > MaxReportBytes {
		return nil, fmt.Errorf("%w: report exceeds %d bytes", model.ErrMalformedUpload, MaxReportBytes)
	}

	var records [][]string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		records, err = readCSV(data)
	case ".xlsx":
		records, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", model.ErrMalformedUpload, ext)
	}
	if err != nil {
		return nil, err
	}
	return build(records, column)
}

func readCSV(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", model.ErrMalformedUpload, err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", model.ErrMalformedUpload, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx has no sheets", model.ErrMalformedUpload)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx sheet %q: %v", model.ErrMalformedUpload, sheets[0], err)
	}
	return rows, nil
}

func build(records [][]string, column string) (*Report, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty report", model.ErrMalformedUpload)
	}
	header := make([]string, len(records[0]))
	symbolAt := -1
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
		if symbolAt < 0 && strings.EqualFold(header[i], column) {
			symbolAt = i
		}
	}
	if symbolAt < 0 {
		return nil, fmt.Errorf("%w: missing required column %q", model.ErrMalformedUpload, column)
	}

	rep := &Report{Columns: header, Rows: make([]map[string]string, 0, len(records)-1)}
	var symbols []string
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		empty := true
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
				if row[h] != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		rep.Rows = append(rep.Rows, row)
		if symbolAt < len(rec) {
			symbols = append(symbols, rec[symbolAt])
		}
	}
	rep.Symbols = model.NormalizeSymbols(symbols)
	return rep, nil
}

// SheetExportURL rewrites a Google Sheet edit link to its CSV export link.
// Other URLs are returned unchanged.
func SheetExportURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "docs.google.com") {
		return raw
	}
	if strings.Contains(raw, "/edit#gid=") {
		return strings.Replace(raw, "/edit#gid=", "/export?format=csv&gid=", 1)
	}
	if i := strings.Index(raw, "/edit"); i >= 0 {
		return raw[:i] + "/export?format=csv"
	}
	return raw
}

// DefaultSheetHosts are the hosts FetchSheet accepts when none are given.
var DefaultSheetHosts = []string{"docs.google.com"}

// CheckSheetURL accepts only http(s) URLs whose host is one of hosts or a subdomain of one.
func CheckSheetURL(raw string, hosts []string) error {
	if len(hosts) == 0 {
		hosts = DefaultSheetHosts
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedUpload, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported url scheme %q", model.ErrMalformedUpload, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && (host == h || strings.HasSuffix(host, "."+h)) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %q is not allowed", model.ErrMalformedUpload, host)
}

// FetchSheet downloads a published sheet or CSV report from an allowed host and parses it.
func FetchSheet(ctx context.Context, client *http.Client, sheetURL, column string, hosts []string) (*Report, error) {
	if sheetURL == "" {
		return nil, fmt.Errorf("%w: empty url", model.ErrMalformedUpload)
	}
	if err := CheckSheetURL(sheetURL, hosts); err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, SheetExportURL(sheetURL), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedUpload, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch sheet: %v", model.ErrMalformedUpload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch sheet: status %d", model.ErrMalformedUpload, resp.StatusCode)
	}

	name := "sheet.csv"
	if strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
		name = "sheet.xlsx"
	}
	return Parse(name, resp.Body, column)
}

// IsMalformed reports whether err is an upload input error.
func IsMalformed(err error) bool {
	return errors.Is(err, model.ErrMalformedUpload)
}
