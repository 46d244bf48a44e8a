package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// candidateDelimiters are tried in order; ties go to the earlier entry.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// readDelimited decodes r to UTF-8 and parses it as one sheet.
func readDelimited(name string, r io.Reader) (*Workbook, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}

	data, _, err := DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return &Workbook{
		Format: FormatDelimited,
		Sheets: []*Sheet{{Name: name, Rows: padRows(rows)}},
	}, nil
}

// DecodeText converts raw text to UTF-8 and reports the detected encoding.
// UTF-8 and UTF-16 byte order marks are honoured and removed. Input that is
// not valid UTF-8 is assumed to be Windows-1252, which is what spreadsheet
// tools on Windows write for "CSV" exports.
func DecodeText(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil

	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, "", fmt.Errorf("utf-16 decode: %w", err)
		}
		return out, "utf-16", nil

	case utf8.Valid(data):
		return data, "utf-8", nil

	default:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, "", fmt.Errorf("windows-1252 decode: %w", err)
		}
		return out, "windows-1252", nil
	}
}

// sniffDelimiter picks the candidate delimiter that occurs most often in the
// first non-empty line, ignoring quoted sections. Defaults to a comma.
func sniffDelimiter(data []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var line string
	for scanner.Scan() {
		if t := bytes.TrimSpace(scanner.Bytes()); len(t) > 0 {
			line = string(t)
			break
		}
	}

	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
