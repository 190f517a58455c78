package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columnTypeRe matches Hive primitive types, optionally parameterized, and
// single-level complex types. Accepted forms:
//
//	WORD                  → STRING, BIGINT, DOUBLE, etc.
//	WORD(digits)          → VARCHAR(255), CHAR(2)
//	WORD(digits, digits)  → DECIMAL(10,2)
//	WORD<WORD[, WORD]>    → ARRAY<STRING>, MAP<STRING,INT>
//
// Case-insensitive.
var columnTypeRe = regexp.MustCompile(`(?i)^[A-Z][A-Z0-9_]*(?:\(\s*\d+\s*(?:,\s*\d+\s*)?\)|<\s*[A-Z][A-Z0-9_]*\s*(?:,\s*[A-Z][A-Z0-9_]*\s*)?>)?$`)

// maxIdentifierLen is the Glue catalog limit for database and table names.
const maxIdentifierLen = 255

// maxColumnTypeLen is the maximum length allowed for a column type string.
const maxColumnTypeLen = 64

// ValidateIdentifier checks that name is a safe catalog identifier:
//   - Non-empty
//   - At most 255 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// QuoteIdentifier wraps an identifier in double quotes for DML statements,
// escaping embedded double quotes by doubling them.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteHiveIdentifier wraps an identifier in backticks for Hive DDL statements,
// escaping embedded backticks by doubling them.
func QuoteHiveIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ValidateColumnType checks that typeName is a safe Hive column type.
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if len(typeName) > maxColumnTypeLen {
		return fmt.Errorf("column type must be at most %d characters", maxColumnTypeLen)
	}
	if strings.ContainsAny(typeName, ";-'\"\\`") {
		return fmt.Errorf("column type contains invalid characters")
	}
	if !columnTypeRe.MatchString(typeName) {
		return fmt.Errorf("column type %q is not a recognized type pattern", typeName)
	}
	return nil
}

// ValidateS3Location checks that location is an s3:// URI.
func ValidateS3Location(location string) error {
	if !strings.HasPrefix(location, "s3://") {
		return fmt.Errorf("location %q must start with s3://", location)
	}
	if len(location) == len("s3://") {
		return fmt.Errorf("location %q has no bucket", location)
	}
	return nil
}
