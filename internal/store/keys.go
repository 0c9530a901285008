package store

import (
	"strconv"
	"time"
)

// indexSep separates an index value from the record ID inside index keys.
// Values never contain a NUL byte, so prefix scans on "value\x00" cannot
// match a longer value that merely starts with the same bytes.
const indexSep = "\x00"

// timeKeyFormat is fixed-width UTC so lexicographic order equals
// chronological order for all index range scans.
const timeKeyFormat = "2006-01-02T15:04:05.000000000Z"

// TimeKey encodes a timestamp as a sortable index value.
func TimeKey(t time.Time) string {
	return t.UTC().Format(timeKeyFormat)
}

// BoolKey encodes a boolean as a normalized two-valued index value.
// Storage detail only; the service API keeps plain bools.
func BoolKey(b bool) string {
	return strconv.FormatBool(b)
}

// recordKey builds the primary key for a record.
func recordKey(prefix, id string) []byte {
	return []byte(prefix + id)
}

// indexPrefix builds the common prefix of all keys of one index.
func indexPrefix(prefix, index string) []byte {
	return []byte(prefix + "idx:" + index + ":")
}

// indexKey builds the full index key for one (value, id) pair.
func indexKey(prefix, index, value, id string) []byte {
	return []byte(prefix + "idx:" + index + ":" + value + indexSep + id)
}

// uniqueIndexKey builds the index key for a unique index, which stores
// the record ID as the value rather than in the key.
func uniqueIndexKey(prefix, index, value string) []byte {
	return []byte(prefix + "idx:" + index + ":" + value)
}
