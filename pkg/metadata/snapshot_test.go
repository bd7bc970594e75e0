package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karlo0/bqdc/pkg/metadata"
)

func testTable() *metadata.Table {
	return &metadata.Table{
		ID:          "orders",
		Description: "Order facts.",
		Fields: []metadata.Field{
			{Name: "OrderID", Type: "STRING", Mode: "REQUIRED", Description: "Primary key."},
			{Name: "amount", Type: "NUMERIC", Mode: "NULLABLE"},
		},
	}
}

func TestSnapshotLookupIsCaseInsensitive(t *testing.T) {
	s := metadata.NewSnapshot(testTable())

	f, ok := s.Lookup("orderid")
	require.True(t, ok)
	assert.Equal(t, "OrderID", f.Name, "original casing is preserved")

	_, ok = s.Lookup("AMOUNT")
	assert.True(t, ok)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func TestSnapshotSetDescription(t *testing.T) {
	s := metadata.NewSnapshot(testTable())

	require.True(t, s.SetDescription("ORDERID", "The key."))
	f, _ := s.Lookup("orderid")
	assert.Equal(t, "The key.", f.Description)

	assert.False(t, s.SetDescription("missing", "x"))

	// Fields reflects staged edits but the source table does not.
	fields := s.Fields()
	assert.Equal(t, "The key.", fields[0].Description)
}

func TestSnapshotNames(t *testing.T) {
	s := metadata.NewSnapshot(testTable())
	assert.Equal(t, []string{"orderid", "amount"}, s.Names())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("OrderId"))
}

func TestSnapshotIsolatedFromTable(t *testing.T) {
	table := testTable()
	s := metadata.NewSnapshot(table)
	s.SetDescription("amount", "Total.")
	assert.Empty(t, table.Fields[1].Description, "snapshot edits stay staged")
}
