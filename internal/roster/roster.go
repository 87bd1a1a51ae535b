// Package roster reads participant lists from pasted text, CSV, JSON, YAML
// and PDF files.
package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"

	"github.com/kalambet/hackmix/internal/participant"
)

var ErrEmpty = errors.New("roster: no participants found")

// Format identifies a roster encoding.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
)

// FormatOf guesses the format from a file name's extension. Unknown
// extensions are read as text.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".pdf":
		return FormatPDF
	default:
		return FormatText
	}
}

// Load reads and parses the roster at path. "-" reads text from stdin.
func Load(path string) ([]participant.Input, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("roster: reading stdin: %w", err)
		}
		return Parse(FormatText, data)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: reading %s: %w", path, err)
	}
	in, err := Parse(FormatOf(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Parse decodes data in the given format. Records are returned as written;
// name validation happens at ingestion.
func Parse(f Format, data []byte) ([]participant.Input, error) {
	var (
		in  []participant.Input
		err error
	)
	switch f {
	case FormatCSV:
		in, err = ParseCSV(bytes.NewReader(data))
	case FormatJSON:
		in, err = ParseJSON(data)
	case FormatYAML:
		in, err = ParseYAML(data)
	case FormatPDF:
		in, err = ParsePDF(data)
	default:
		in, err = ParseText(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, ErrEmpty
	}
	return in, nil
}

// ParseText reads one participant per line as "Name | profile URL". Blank
// lines and lines starting with '#' are skipped.
func ParseText(r io.Reader) ([]participant.Input, error) {
	var out []participant.Input
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		in := participant.Input{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			in.LinkedInURL = strings.TrimSpace(parts[1])
		}
		if in.Name != "" {
			out = append(out, in)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("roster: reading text: %w", err)
	}
	return out, nil
}

// csvColumns maps normalized header names to Input fields.
var csvColumns = map[string]string{
	"name": "name", "fullname": "name", "participant": "name",
	"email": "email", "emailaddress": "email",
	"company": "company", "organization": "company", "employer": "company",
	"linkedin": "linkedin", "linkedinurl": "linkedin", "profileurl": "linkedin",
}

// ParseCSV reads a CSV with an optional header row. Without a recognizable
// "name" header the first column is the name and the second the profile URL.
func ParseCSV(r io.Reader) ([]participant.Input, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("roster: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		key := strings.Map(func(r rune) rune {
			if r == ' ' || r == '_' || r == '-' {
				return -1
			}
			return r
		}, strings.ToLower(strings.TrimSpace(h)))
		if field, ok := csvColumns[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["name"]; ok {
		rows = rows[1:]
	} else {
		cols = map[string]int{"name": 0, "linkedin": 1}
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var out []participant.Input
	for _, row := range rows {
		in := participant.Input{
			Name:        cell(row, "name"),
			Email:       cell(row, "email"),
			Company:     cell(row, "company"),
			LinkedInURL: cell(row, "linkedin"),
		}
		if in.Name != "" {
			out = append(out, in)
		}
	}
	return out, nil
}

// document is the object form accepted by ParseJSON and ParseYAML.
type document struct {
	Participants []entry `json:"participants" yaml:"participants"`
}

// entry is a participant record or a bare name string.
type entry struct {
	participant.Input
}

func (e *entry) UnmarshalJSON(b []byte) error {
	var name string
	if json.Unmarshal(b, &name) == nil {
		e.Name = name
		return nil
	}
	return json.Unmarshal(b, &e.Input)
}

func (e *entry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		e.Name = n.Value
		return nil
	}
	return n.Decode(&e.Input)
}

// ParseJSON accepts an array of records or names, or an object with a
// "participants" array.
func ParseJSON(data []byte) ([]participant.Input, error) {
	data = bytes.TrimSpace(data)
	var entries []entry
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("roster: decoding json: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("roster: decoding json: %w", err)
		}
		entries = doc.Participants
	}
	return inputs(entries), nil
}

// ParseYAML accepts the same shapes as ParseJSON.
func ParseYAML(data []byte) ([]participant.Input, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("roster: decoding yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	var entries []entry
	if doc := root.Content[0]; doc.Kind == yaml.SequenceNode {
		if err := doc.Decode(&entries); err != nil {
			return nil, fmt.Errorf("roster: decoding yaml: %w", err)
		}
	} else {
		var d document
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("roster: decoding yaml: %w", err)
		}
		entries = d.Participants
	}
	return inputs(entries), nil
}

// ParsePDF extracts the document's plain text and reads it with ParseText.
func ParsePDF(data []byte) ([]participant.Input, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("roster: opening pdf: %w", err)
	}
	text, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("roster: extracting pdf text: %w", err)
	}
	return ParseText(text)
}

// Invalid returns the names that ingestion will drop for lacking a last name.
func Invalid(in []participant.Input) []string {
	var out []string
	for _, p := range in {
		if name := strings.TrimSpace(p.Name); name != "" && !participant.ValidName(name) {
			out = append(out, name)
		}
	}
	return out
}

func inputs(entries []entry) []participant.Input {
	out := make([]participant.Input, 0, len(entries))
	for _, e := range entries {
		if e.Name = strings.TrimSpace(e.Name); e.Name != "" {
			out = append(out, e.Input)
		}
	}
	return out
}
