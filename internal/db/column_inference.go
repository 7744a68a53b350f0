package db

import (
	"strconv"
	"strings"
)

// columnType is the storage class inferred for a dataset column
type columnType int

const (
	columnTypeText columnType = iota
	columnTypeInteger
	columnTypeReal
)

func (ct columnType) String() string {
	switch ct {
	case columnTypeInteger:
		return "integer"
	case columnTypeReal:
		return "real"
	default:
		return "text"
	}
}

// inferColumnType picks the narrowest type every non-empty value fits.
// Priority: TEXT > REAL > INTEGER. A column with no values is TEXT.
func inferColumnType(values []string) columnType {
	hasInteger := false
	hasReal := false

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasReal = true
			continue
		}

		// One text value makes the whole column text
		return columnTypeText
	}

	if hasReal {
		return columnTypeReal
	}
	if hasInteger {
		return columnTypeInteger
	}
	return columnTypeText
}

// inferColumnTypes infers one type per header column.
func inferColumnTypes(data *Dataset) []columnType {
	types := make([]columnType, len(data.Header))
	for i := range data.Header {
		values := make([]string, 0, len(data.Records))
		for _, record := range data.Records {
			if i < len(record) {
				values = append(values, record[i])
			}
		}
		types[i] = inferColumnType(values)
	}
	return types
}

// convertValue turns a raw cell into the driver value for its column.
// Empty cells are stored as NULL.
func convertValue(raw string, ct columnType) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	switch ct {
	case columnTypeInteger:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case columnTypeReal:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return raw
}
