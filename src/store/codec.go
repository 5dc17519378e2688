package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Tabular artifacts are serialized column-by-column: a JSON header describing
// the schema, then each column's values as little-endian binary blocks, the
// whole body zstd-compressed. Documents stay plain JSON so they can be
// inspected with standard tools.

const tableCodecVersion = 1

type tableHeader struct {
	Version int              `json:"version"`
	Rows    int              `json:"rows"`
	Columns []tableHeaderCol `json:"columns"`
}

type tableHeaderCol struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// EncodeTable serializes a table into the compressed columnar format.
func EncodeTable(t *Table) ([]byte, error) {
	header := tableHeader{Version: tableCodecVersion, Rows: t.NumRows()}
	for _, col := range t.columns {
		header.Columns = append(header.Columns, tableHeaderCol{Name: col.Name, Type: col.Type})
	}
	headerRaw, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("encode table header: %w", err)
	}

	var body bytes.Buffer
	if err := binary.Write(&body, binary.LittleEndian, uint32(len(headerRaw))); err != nil {
		return nil, err
	}
	body.Write(headerRaw)

	for i := range t.columns {
		if err := writeColumn(&body, &t.columns[i]); err != nil {
			return nil, fmt.Errorf("encode column %q: %w", t.columns[i].Name, err)
		}
	}

	var out bytes.Buffer
	enc, err := zstd.NewWriter(&out)
	if err != nil {
		return nil, fmt.Errorf("init zstd writer: %w", err)
	}
	if _, err := enc.Write(body.Bytes()); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compress table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flush zstd writer: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeTable is the inverse of EncodeTable.
func DecodeTable(data []byte) (*Table, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("init zstd reader: %w", err)
	}
	defer dec.Close()

	body, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress table: %w", err)
	}

	r := bytes.NewReader(body)
	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("read table header length: %w", err)
	}
	headerRaw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerRaw); err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}
	var header tableHeader
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return nil, fmt.Errorf("decode table header: %w", err)
	}
	if header.Version != tableCodecVersion {
		return nil, fmt.Errorf("unsupported table codec version %d", header.Version)
	}

	t := NewTable()
	for _, meta := range header.Columns {
		col, err := readColumn(r, meta, header.Rows)
		if err != nil {
			return nil, fmt.Errorf("decode column %q: %w", meta.Name, err)
		}
		if err := t.addColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func writeColumn(w *bytes.Buffer, col *Column) error {
	switch col.Type {
	case ColumnFloat64:
		return binary.Write(w, binary.LittleEndian, col.Floats)
	case ColumnInt64:
		return binary.Write(w, binary.LittleEndian, col.Ints)
	case ColumnString:
		for _, s := range col.Strings {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
				return err
			}
			w.WriteString(s)
		}
		return nil
	}
	return fmt.Errorf("unknown column type %q", col.Type)
}

func readColumn(r *bytes.Reader, meta tableHeaderCol, rows int) (Column, error) {
	col := Column{Name: meta.Name, Type: meta.Type}
	switch meta.Type {
	case ColumnFloat64:
		col.Floats = make([]float64, rows)
		if err := binary.Read(r, binary.LittleEndian, col.Floats); err != nil {
			return col, err
		}
	case ColumnInt64:
		col.Ints = make([]int64, rows)
		if err := binary.Read(r, binary.LittleEndian, col.Ints); err != nil {
			return col, err
		}
	case ColumnString:
		col.Strings = make([]string, rows)
		for i := 0; i < rows; i++ {
			var n uint32
			if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
				return col, err
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return col, err
			}
			col.Strings[i] = string(buf)
		}
	default:
		return col, fmt.Errorf("unknown column type %q", meta.Type)
	}
	return col, nil
}

// Document is a structured (non-tabular) computation artifact. It is stored
// as plain JSON for inspectability.
type Document map[string]interface{}

// EncodeDocument serializes a document as JSON.
func EncodeDocument(doc Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

// DecodeDocument is the inverse of EncodeDocument.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
