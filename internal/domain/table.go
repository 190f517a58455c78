package domain

import (
	"fmt"
	"path"
	"strings"
)

// ObjectLocation addresses a single object in S3.
type ObjectLocation struct {
	Bucket string
	Key    string
}

// URI returns the s3:// URI of the object.
func (l ObjectLocation) URI() string {
	return fmt.Sprintf("s3://%s/%s", l.Bucket, strings.TrimPrefix(l.Key, "/"))
}

// Prefix returns the s3:// URI of the directory holding the object, with a
// trailing slash. External tables are registered against this prefix.
func (l ObjectLocation) Prefix() string {
	dir := path.Dir(strings.TrimPrefix(l.Key, "/"))
	if dir == "." || dir == "/" {
		return fmt.Sprintf("s3://%s/", l.Bucket)
	}
	return fmt.Sprintf("s3://%s/%s/", l.Bucket, dir)
}

// ColumnDef describes a column of an external table.
type ColumnDef struct {
	Name string
	Type string
}

// TextFormat describes a delimited text storage format.
type TextFormat struct {
	FieldDelimiter  string
	SkipHeaderLines int
}

// TableDefinition is everything needed to register an external table.
type TableDefinition struct {
	Database string
	Table    string
	Columns  []ColumnDef
	Location string
	Format   TextFormat
}

// Frame is a locally loaded delimited file. All cells are kept as text.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name in the frame, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
