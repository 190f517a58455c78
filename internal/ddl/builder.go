// Package ddl builds Athena DDL and query statements.
package ddl

import (
	"fmt"
	"strings"

	"athena-demo/internal/domain"
)

// lazySimpleSerDe is the Hive SerDe used for delimited text tables.
const lazySimpleSerDe = "org.apache.hadoop.hive.serde2.lazy.LazySimpleSerDe"

// CreateDatabase returns: CREATE DATABASE IF NOT EXISTS `<name>`.
func CreateDatabase(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid database name: %w", err)
	}
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", QuoteHiveIdentifier(name)), nil
}

// DropTable returns: DROP TABLE IF EXISTS `<database>`.`<table>`.
func DropTable(database, table string) (string, error) {
	if err := ValidateIdentifier(database); err != nil {
		return "", fmt.Errorf("invalid database name: %w", err)
	}
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s.%s",
		QuoteHiveIdentifier(database), QuoteHiveIdentifier(table)), nil
}

// CreateExternalTable returns a CREATE EXTERNAL TABLE statement for a
// delimited text table stored at def.Location.
func CreateExternalTable(def domain.TableDefinition) (string, error) {
	if err := ValidateIdentifier(def.Database); err != nil {
		return "", fmt.Errorf("invalid database name: %w", err)
	}
	if err := ValidateIdentifier(def.Table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(def.Columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if err := ValidateS3Location(def.Location); err != nil {
		return "", fmt.Errorf("invalid table location: %w", err)
	}
	delim := def.Format.FieldDelimiter
	if delim == "" {
		delim = ","
	}
	if len([]rune(delim)) != 1 {
		return "", fmt.Errorf("field delimiter must be a single character, got %q", delim)
	}
	if def.Format.SkipHeaderLines < 0 {
		return "", fmt.Errorf("skip header lines must not be negative")
	}

	colDefs := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("  %s %s", QuoteHiveIdentifier(c.Name), strings.ToUpper(c.Type)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE EXTERNAL TABLE %s.%s (\n",
		QuoteHiveIdentifier(def.Database), QuoteHiveIdentifier(def.Table))
	b.WriteString(strings.Join(colDefs, ",\n"))
	b.WriteString("\n)\n")
	fmt.Fprintf(&b, "ROW FORMAT SERDE %s\n", QuoteLiteral(lazySimpleSerDe))
	fmt.Fprintf(&b, "WITH SERDEPROPERTIES (\n  'serialization.format' = %s,\n  'field.delim' = %s\n)\n",
		QuoteLiteral(delim), QuoteLiteral(delim))
	fmt.Fprintf(&b, "LOCATION %s\n", QuoteLiteral(def.Location))
	fmt.Fprintf(&b, "TBLPROPERTIES ('has_encrypted_data'='false', 'skip.header.line.count'='%d')",
		def.Format.SkipHeaderLines)
	return b.String(), nil
}

// AverageWhere returns:
// SELECT AVG("<avgColumn>") AS average_<avgColumn> FROM "<table>" WHERE "<filterColumn>" = '<value>'.
func AverageWhere(table, avgColumn, filterColumn, value string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(avgColumn); err != nil {
		return "", fmt.Errorf("invalid aggregate column: %w", err)
	}
	if err := ValidateIdentifier(filterColumn); err != nil {
		return "", fmt.Errorf("invalid filter column: %w", err)
	}
	return fmt.Sprintf("SELECT AVG(%s) AS %s FROM %s WHERE %s = %s",
		QuoteIdentifier(avgColumn),
		QuoteIdentifier("average_"+avgColumn),
		QuoteIdentifier(table),
		QuoteIdentifier(filterColumn),
		QuoteLiteral(value),
	), nil
}
