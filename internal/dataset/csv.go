package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"understat-pipeline/lib/osutil"
)

var ErrMissingIDColumn = errors.New("historical table has no id column")

// EncodeCSV writes the header row followed by every record, nulls are empty
// cells. Extra columns follow the fixed ones, records without them get empty cells.
func EncodeCSV(w io.Writer, table Table) error {
	extra := table.ExtraColumns()

	cw := csv.NewWriter(w)
	err := cw.Write(append(Columns(), extra...))
	if err != nil {
		return err
	}

	row := make([]string, len(columns)+len(extra))
	for i := range table {
		for j, c := range columns {
			row[j] = c.format(&table[i])
		}
		for j, name := range extra {
			row[len(columns)+j], _ = table[i].Value(name)
		}
		err = cw.Write(row)
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVHeader describes how a CSV header was reconciled with the column set.
type CSVHeader struct {
	// columns in the file that are not part of the column set, their cells
	// are carried verbatim in Record.Extra
	Extra []string
	// columns of the set that the file does not have, they are read as null
	Missing []string
}

// headerNames makes repeated header names unique the way pandas does,
// the second `goals` becomes `goals.1`.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	count := map[string]int{}
	for i, name := range header {
		n := count[name]
		count[name]++
		if n > 0 {
			name = fmt.Sprintf("%s.%d", name, n)
		}
		names[i] = name
	}
	return names
}

// DecodeCSV reads a delimited table with a header row, columns are matched by
// name. The only required column is `id`. Cells are kept as written except
// for ids, which are coerced to strings, and numeric columns.
func DecodeCSV(r io.Reader) (Table, CSVHeader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	// ragged rows are filled/truncated instead of failing the whole file
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, CSVHeader{}, ErrMissingIDColumn
	}
	if err != nil {
		return nil, CSVHeader{}, fmt.Errorf("read header: %w", err)
	}

	var info CSVHeader
	names := headerNames(header)
	mapping := make([]int, len(names))
	seen := map[string]bool{}
	for i, name := range names {
		idx, ok := columnIndex[name]
		if !ok {
			mapping[i] = -1
			info.Extra = append(info.Extra, name)
			continue
		}
		seen[name] = true
		mapping[i] = idx
	}
	if !seen["id"] {
		return nil, info, ErrMissingIDColumn
	}
	for _, c := range columns {
		if !seen[c.name] {
			info.Missing = append(info.Missing, c.name)
		}
	}

	var table Table
	line := 1
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, info, fmt.Errorf("read row %d: %w", line, err)
		}

		var rec Record
		if len(info.Extra) > 0 {
			rec.Extra = make([]Cell, 0, len(info.Extra))
		}
		for i, name := range names {
			value := ""
			if i < len(fields) {
				value = fields[i]
			}
			if mapping[i] < 0 {
				rec.Extra = append(rec.Extra, Cell{Column: name, Value: value})
				continue
			}
			columns[mapping[i]].parse(&rec, value)
		}
		table = append(table, rec)
	}
	return table, info, nil
}

func WriteCSV(path string, table Table) error {
	return osutil.WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, table)
	})
}

func ReadCSV(path string) (Table, CSVHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, CSVHeader{}, err
	}
	defer f.Close()
	return DecodeCSV(f)
}
