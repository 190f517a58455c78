package ddl

import "athena-demo/internal/domain"

// Column names of the Redfin export. The remote table uses lowercase
// underscore names; the CSV header uses upper-case names with spaces.
const (
	RemotePropertyTypeColumn = "property_type"
	RemotePriceColumn        = "price"
	LocalPropertyTypeColumn  = "PROPERTY TYPE"
	LocalPriceColumn         = "PRICE"
)

// RedfinColumns is the fixed schema of a Redfin listings export.
var RedfinColumns = []domain.ColumnDef{
	{Name: "sale_type", Type: "STRING"},
	{Name: "sold_date", Type: "STRING"},
	{Name: "property_type", Type: "STRING"},
	{Name: "address", Type: "STRING"},
	{Name: "city", Type: "STRING"},
	{Name: "state_or_province", Type: "STRING"},
	{Name: "zip_or_postal_code", Type: "STRING"},
	{Name: "price", Type: "BIGINT"},
	{Name: "beds", Type: "INT"},
	{Name: "baths", Type: "INT"},
	{Name: "location", Type: "STRING"},
	{Name: "square_feet", Type: "INT"},
	{Name: "lot_size", Type: "INT"},
	{Name: "year_built", Type: "INT"},
	{Name: "days_on_market", Type: "INT"},
	{Name: "price_per_square_feet", Type: "INT"},
	{Name: "hoa_per_month", Type: "STRING"},
	{Name: "status", Type: "STRING"},
	{Name: "next_open_house_start_time", Type: "STRING"},
	{Name: "next_open_house_end_time", Type: "STRING"},
	{Name: "url", Type: "STRING"},
	{Name: "source", Type: "STRING"},
	{Name: "mls", Type: "STRING"},
	{Name: "favorite", Type: "STRING"},
	{Name: "interested", Type: "STRING"},
	{Name: "latitude", Type: "DOUBLE"},
	{Name: "longitude", Type: "DOUBLE"},
}

// RedfinTable returns the external table definition for a Redfin export
// stored under location.
func RedfinTable(database, table, location string) domain.TableDefinition {
	cols := make([]domain.ColumnDef, len(RedfinColumns))
	copy(cols, RedfinColumns)
	return domain.TableDefinition{
		Database: database,
		Table:    table,
		Columns:  cols,
		Location: location,
		Format: domain.TextFormat{
			FieldDelimiter:  ",",
			SkipHeaderLines: 1,
		},
	}
}
