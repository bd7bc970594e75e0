package reconcile

// Limits carries the store-imposed size caps and retry bounds as explicit
// configuration, so boundary values can be exercised in tests without
// touching process-wide state.
type Limits struct {
	// MaxSchemaDescription is the canonical store's description cap per
	// table and per field. A description of exactly this length is read
	// as truncation evidence by MergeDescriptions.
	MaxSchemaDescription int

	// MaxTagValue is the tag store's cap on a single attribute value.
	MaxTagValue int

	// MaxSheetName is the interchange format's cap on a sheet name.
	MaxSheetName int

	// SchemaWriteAttempts bounds the canonical schema rewrite retry.
	SchemaWriteAttempts int
}

// DefaultLimits returns the production caps: BigQuery's 1024-byte
// description limit, Data Catalog's 2000-byte tag value limit, Excel's
// 31-character sheet names, and 10 schema write attempts.
func DefaultLimits() Limits {
	return Limits{
		MaxSchemaDescription: 1024,
		MaxTagValue:          2000,
		MaxSheetName:         31,
		SchemaWriteAttempts:  10,
	}
}
