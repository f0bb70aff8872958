package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one parsed export line. Fields are raw apart from quantity and the
// dash-means-no signed/altered columns; resolution happens later so an error
// can cite the untouched input.
type Row struct {
	Line      int
	Quantity  int32
	Name      string
	SetCode   string
	Variation string
	Marker    string
	Language  string
	Condition string
	Signed    bool
	Altered   bool
}

// exportColumns are the headers the export writes, including its misspelling
// of Language.
var exportColumns = []string{"Qty", "Name", "Set", "Set Number", "Foil", "Languange", "Condition", "Signed", "Alter"}

// readRows parses the export CSV. Columns are located by header name, so
// column order and extra columns don't matter.
func readRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range exportColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("export header: missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read export line %d: %w", line, err)
		}

		qty, err := strconv.ParseInt(field(record, "Qty"), 10, 32)
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("export line %d: bad quantity %q", line, field(record, "Qty"))
		}

		rows = append(rows, Row{
			Line:      line,
			Quantity:  int32(qty),
			Name:      field(record, "Name"),
			SetCode:   strings.ToLower(field(record, "Set")),
			Variation: field(record, "Set Number"),
			Marker:    field(record, "Foil"),
			Language:  strings.ToLower(field(record, "Languange")),
			Condition: field(record, "Condition"),
			Signed:    notDash(field(record, "Signed")),
			Altered:   notDash(field(record, "Alter")),
		})
	}
}

func notDash(s string) bool { return s != "" && s != "-" }
