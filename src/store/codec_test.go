package store

import (
	"math"
	"testing"
)

func buildSampleTable(t *testing.T) *Table {
	t.Helper()

	table := NewTable()
	steps := []error{
		table.AddIntColumn("exposure_id", []int64{1, 2, 3}),
		table.AddStringColumn("stage", []string{"S1", "S2", "S3"}),
		table.AddFloatColumn("ecl_amount", []float64{101.25, 0, math.SmallestNonzeroFloat64}),
		table.AddStringColumn("ecl_currency", []string{"EUR", "EUR", "USD"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("failed to build table: %v", err)
		}
	}
	return table
}

func TestTableCodecRoundTrip(t *testing.T) {
	table := buildSampleTable(t)

	encoded, err := EncodeTable(table)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeTable(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !table.Equal(decoded) {
		t.Fatalf("round trip lost fidelity: columns %v vs %v", table.ColumnNames(), decoded.ColumnNames())
	}
	if decoded.NumRows() != 3 || decoded.NumColumns() != 4 {
		t.Fatalf("unexpected shape after decode: %d rows, %d cols", decoded.NumRows(), decoded.NumColumns())
	}
}

func TestTableCodecEmptyTable(t *testing.T) {
	table := NewTable()
	if err := table.AddFloatColumn("ecl_amount", nil); err != nil {
		t.Fatalf("failed to add empty column: %v", err)
	}

	encoded, err := EncodeTable(table)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeTable(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.NumRows() != 0 {
		t.Fatalf("expected 0 rows, got %d", decoded.NumRows())
	}
}

func TestTableRejectsRaggedColumns(t *testing.T) {
	table := NewTable()
	if err := table.AddIntColumn("exposure_id", []int64{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.AddFloatColumn("ecl_amount", []float64{1.0}); err == nil {
		t.Fatal("expected error for ragged column, got nil")
	}
}

func TestTableRejectsDuplicateColumn(t *testing.T) {
	table := NewTable()
	if err := table.AddIntColumn("exposure_id", []int64{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.AddIntColumn("exposure_id", []int64{2}); err == nil {
		t.Fatal("expected error for duplicate column, got nil")
	}
}

func TestDocumentCodecRoundTrip(t *testing.T) {
	doc := Document{"scenario_id": "adverse", "horizon_months": float64(60)}

	encoded, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded["scenario_id"] != "adverse" || decoded["horizon_months"] != float64(60) {
		t.Fatalf("round trip changed document: %+v", decoded)
	}
}
