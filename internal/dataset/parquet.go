package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"understat-pipeline/lib/osutil"

	"github.com/parquet-go/parquet-go"
)

// EncodeParquet writes the table as a snappy compressed parquet file whose
// schema follows the CSV column order, extra columns included.
func EncodeParquet(w io.Writer, table Table) error {
	extra := table.ExtraColumns()
	if len(extra) > 0 {
		return encodeParquetWithExtra(w, table, extra)
	}

	writer := parquet.NewGenericWriter[Record](w)
	if len(table) > 0 {
		_, err := writer.Write(table)
		if err != nil {
			return err
		}
	}
	return writer.Close()
}

var recordType = reflect.TypeOf(Record{})

// extraRowType is Record's parquet fields followed by one optional string
// field per extra column.
func extraRowType(extra []string) (reflect.Type, []int, error) {
	var fields []reflect.StructField
	var fixed []int
	for i := 0; i < recordType.NumField(); i++ {
		f := recordType.Field(i)
		if f.Tag.Get("parquet") == "-" {
			continue
		}
		fields = append(fields, f)
		fixed = append(fixed, i)
	}
	for i, name := range extra {
		if name == "" || strings.ContainsAny(name, ",\"`") {
			return nil, nil, fmt.Errorf("column %q cannot be written to parquet", name)
		}
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("Extra%d", i),
			Type: reflect.TypeOf((*string)(nil)),
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:"%s,optional,snappy"`, name)),
		})
	}
	return reflect.StructOf(fields), fixed, nil
}

func encodeParquetWithExtra(w io.Writer, table Table, extra []string) error {
	rowType, fixed, err := extraRowType(extra)
	if err != nil {
		return err
	}
	schema := parquet.SchemaOf(reflect.New(rowType).Elem().Interface())
	writer := parquet.NewWriter(w, schema)

	for _, rec := range table {
		row := reflect.New(rowType).Elem()
		src := reflect.ValueOf(rec)
		for j, i := range fixed {
			row.Field(j).Set(src.Field(i))
		}
		for j, name := range extra {
			value, _ := rec.Value(name)
			if value == "" {
				continue
			}
			row.Field(len(fixed) + j).Set(reflect.ValueOf(&value))
		}
		err = writer.Write(row.Interface())
		if err != nil {
			return err
		}
	}
	return writer.Close()
}

func WriteParquet(path string, table Table) error {
	return osutil.WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeParquet(w, table)
	})
}

func ReadParquet(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	rows, err := parquet.Read[Record](f, stat.Size())
	if err != nil {
		return nil, err
	}
	table := Table(rows)

	file, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, err
	}
	err = readExtra(file, table)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// readExtra fills Record.Extra from the leaf columns that are not part of the
// fixed set, nulls read back as empty cells like they do from CSV.
func readExtra(file *parquet.File, table Table) error {
	var extra []string
	index := map[int]int{}
	for i, path := range file.Schema().Columns() {
		if len(path) != 1 {
			continue
		}
		if _, ok := columnIndex[path[0]]; ok {
			continue
		}
		index[i] = len(extra)
		extra = append(extra, path[0])
	}
	if len(extra) == 0 {
		return nil
	}

	next := 0
	buff := make([]parquet.Row, 128)
	for _, group := range file.RowGroups() {
		rows := group.Rows()
		for {
			n, err := rows.ReadRows(buff)
			for _, row := range buff[:n] {
				if next >= len(table) {
					rows.Close()
					return fmt.Errorf("parquet file has more rows than %d", len(table))
				}
				cells := make([]Cell, len(extra))
				for j, name := range extra {
					cells[j].Column = name
				}
				for _, v := range row {
					j, ok := index[v.Column()]
					if !ok || v.IsNull() {
						continue
					}
					cells[j].Value = string(v.ByteArray())
				}
				table[next].Extra = cells
				next++
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rows.Close()
				return err
			}
		}
		rows.Close()
	}
	return nil
}
