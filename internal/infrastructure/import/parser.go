package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// encodingCheckWindow is how many bytes are inspected up front to reject
// files that are not UTF-8 before any rows are parsed.
const encodingCheckWindow = 4096

// Row is a single parsed data row, keyed by header name.
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value of the named column, or "" if absent.
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// GetOrDefault returns the value of the named column, or fallback when
// the column is absent or blank.
func (r *Row) GetOrDefault(column, fallback string) string {
	if v := r.Data[column]; v != "" {
		return v
	}
	return fallback
}

// IsEmpty reports whether every cell in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// CSVParser reads header-keyed rows from a CSV stream. Line numbers are
// 1-based and count the header, so the first data row is line 2.
type CSVParser struct {
	reader   *csv.Reader
	headers  []string
	columns  map[string]int
	trim     bool
	line     int
	dataRows int
}

type parserConfig struct {
	delimiter  rune
	lazyQuotes bool
	trim       bool
}

// ParserOption customizes CSV parsing behavior.
type ParserOption func(*parserConfig)

// WithDelimiter sets the field delimiter. Defaults to a comma.
func WithDelimiter(d rune) ParserOption {
	return func(c *parserConfig) { c.delimiter = d }
}

// WithLazyQuotes controls tolerance for stray quotes inside fields.
// Enabled by default since spreadsheet exports are rarely strict.
func WithLazyQuotes(lazy bool) ParserOption {
	return func(c *parserConfig) { c.lazyQuotes = lazy }
}

// WithTrimSpace controls whether cell values are whitespace-trimmed.
// Enabled by default.
func WithTrimSpace(trim bool) ParserOption {
	return func(c *parserConfig) { c.trim = trim }
}

// NewCSVParser wraps a reader in a CSV parser. The stream must be UTF-8;
// a leading byte order mark is stripped.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	cfg := parserConfig{
		delimiter:  ',',
		lazyQuotes: true,
		trim:       true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	br := bufio.NewReader(r)
	if err := stripBOM(br); err != nil {
		return nil, err
	}
	if err := checkEncoding(br); err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = cfg.delimiter
	cr.LazyQuotes = cfg.lazyQuotes
	cr.TrimLeadingSpace = cfg.trim
	// Ragged rows are handled per-row so one short line does not abort
	// the whole file
	cr.FieldsPerRecord = -1

	return &CSVParser{
		reader:  cr,
		columns: make(map[string]int),
		trim:    cfg.trim,
	}, nil
}

// ParseFromBytes builds a parser over an in-memory CSV payload.
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

func stripBOM(br *bufio.Reader) error {
	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read file: %w", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	return nil
}

func checkEncoding(br *bufio.Reader) error {
	window, err := br.Peek(encodingCheckWindow)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read file: %w", err)
	}
	if len(window) == 0 {
		return ErrEmptyFile
	}
	// A full window may end mid-rune; drop up to three trailing bytes
	// before judging validity
	if len(window) == encodingCheckWindow {
		for i := 0; i < utf8.UTFMax-1; i++ {
			if utf8.Valid(window) {
				break
			}
			window = window[:len(window)-1]
		}
	}
	if !utf8.Valid(window) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader consumes the header row. It must be called before ReadRow.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, name := range record {
		if p.trim {
			name = strings.TrimSpace(name)
		}
		p.headers[i] = name
		p.columns[name] = i
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.line = 1
	return nil
}

// Headers returns the parsed header names in file order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether the named column is present.
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.columns[name]
	return ok
}

// MissingHeaders returns the subset of required columns absent from the file.
func (p *CSVParser) MissingHeaders(required []string) []string {
	var missing []string
	for _, name := range required {
		if !p.HasHeader(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReadRow reads the next data row. Returns io.EOF at end of file.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", p.line, err)
	}
	p.dataRows++

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}
	for i, name := range p.headers {
		value := ""
		if i < len(record) {
			value = record[i]
			if p.trim {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[name] = value
	}
	return row, nil
}

// ReadAllRows drains the remaining rows, dropping fully blank ones.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// CurrentRow returns the 1-based line number of the last row read.
func (p *CSVParser) CurrentRow() int {
	return p.line
}

// TotalRows returns how many data rows have been read so far.
func (p *CSVParser) TotalRows() int {
	return p.dataRows
}
