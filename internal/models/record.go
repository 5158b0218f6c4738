package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Column identifies a canonical column of the weather table.
type Column string

const (
	ColumnDate        Column = "date"
	ColumnTemperature Column = "temperature"
	ColumnHumidity    Column = "humidity"
	ColumnPressure    Column = "pressure"
	ColumnCondition   Column = "condition"
	ColumnWind        Column = "wind"
)

// RawDocument is one record as it arrives from the document store or the
// seed file, before field names are normalized.
type RawDocument = map[string]interface{}

// WeatherRecord represents a single weather observation after ingestion.
// Numeric fields use pointers so that a value missing from the source
// document stays distinguishable from zero.
type WeatherRecord struct {
	DateRaw     string    `json:"-" bson:"date"`
	Timestamp   time.Time `json:"timestamp" bson:"-"`
	Temperature *float64  `json:"temperature,omitempty" bson:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty" bson:"humidity,omitempty"`
	Pressure    *float64  `json:"pressure,omitempty" bson:"pressure,omitempty"`
	Condition   string    `json:"condition,omitempty" bson:"condition,omitempty"`
	Wind        string    `json:"wind,omitempty" bson:"wind,omitempty"`

	// Derived during cleaning.
	Month     int    `json:"month,omitempty" bson:"-"`
	MonthName string `json:"month_name,omitempty" bson:"-"`
}

// WeatherTable is an ordered collection of records, insertion order equal to
// source order. Columns records which canonical columns the source carried,
// so aggregations can skip instead of fail when a column is absent.
type WeatherTable struct {
	Records     []WeatherRecord
	Columns     map[Column]bool
	DroppedRows int
	cleaned     bool
}

// NewWeatherTable builds an empty table with no columns.
func NewWeatherTable() *WeatherTable {
	return &WeatherTable{Columns: make(map[Column]bool)}
}

// HasColumn reports whether the source carried the given canonical column.
func (t *WeatherTable) HasColumn(cols ...Column) bool {
	for _, c := range cols {
		if !t.Columns[c] {
			return false
		}
	}
	return true
}

// Len returns the number of records in the table.
func (t *WeatherTable) Len() int {
	return len(t.Records)
}

// Empty reports whether the table holds no records.
func (t *WeatherTable) Empty() bool {
	return len(t.Records) == 0
}

// columnAliases maps source field-name variants onto the canonical schema.
// The source lineages disagree on capitalization, spacing and unit suffixes
// ("Date" vs "date", "Temperature(°C)", "Humidity (%)", "Barometer (inHg)",
// "Wind (mph)"), so field names are matched after lowercasing and stripping
// everything except letters and digits.
var columnAliases = map[string]Column{
	"date":          ColumnDate,
	"datetime":      ColumnDate,
	"temperature":   ColumnTemperature,
	"temperaturec":  ColumnTemperature,
	"temp":          ColumnTemperature,
	"humidity":      ColumnHumidity,
	"barometer":     ColumnPressure,
	"barometerinhg": ColumnPressure,
	"pressure":      ColumnPressure,
	"weather":       ColumnCondition,
	"condition":     ColumnCondition,
	"wind":          ColumnWind,
	"windmph":       ColumnWind,
}

// CanonicalColumn resolves a source field name to its canonical column.
// Returns false for fields the table does not model (including "_id").
func CanonicalColumn(field string) (Column, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(field) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	col, ok := columnAliases[b.String()]
	return col, ok
}

// NewTableFromDocuments normalizes raw documents into a WeatherTable.
// Unknown fields (the store's internal identifier among them) are dropped.
// The table still needs Clean before aggregation.
func NewTableFromDocuments(docs []RawDocument) *WeatherTable {
	table := NewWeatherTable()

	for _, doc := range docs {
		var rec WeatherRecord
		for field, value := range doc {
			col, ok := CanonicalColumn(field)
			if !ok {
				continue
			}
			table.Columns[col] = true

			switch col {
			case ColumnDate:
				switch v := value.(type) {
				case time.Time:
					rec.Timestamp = v
				case primitive.DateTime:
					rec.Timestamp = v.Time()
				default:
					rec.DateRaw = asString(value)
				}
			case ColumnTemperature:
				rec.Temperature = asFloat(value)
			case ColumnHumidity:
				rec.Humidity = asFloat(value)
			case ColumnPressure:
				rec.Pressure = asFloat(value)
			case ColumnCondition:
				rec.Condition = asString(value)
			case ColumnWind:
				rec.Wind = asString(value)
			}
		}
		table.Records = append(table.Records, rec)
	}

	return table
}

// dateLayouts are tried in order when parsing raw date strings.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// ParseTimestamp parses a raw date value into a time.Time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &ValidationError{
		Field:   string(ColumnDate),
		Value:   raw,
		Message: "unparseable date value",
	}
}

// Clean parses timestamps and derives the month fields, dropping records
// whose date cannot be parsed. Dropped records are counted on the table.
// Clean is idempotent: running it on an already-cleaned table is a no-op.
func (t *WeatherTable) Clean() *WeatherTable {
	if t.cleaned {
		return t
	}

	kept := t.Records[:0]
	for _, rec := range t.Records {
		if rec.Timestamp.IsZero() {
			ts, err := ParseTimestamp(rec.DateRaw)
			if err != nil {
				t.DroppedRows++
				continue
			}
			rec.Timestamp = ts
		}
		rec.Month = int(rec.Timestamp.Month())
		rec.MonthName = rec.Timestamp.Month().String()
		kept = append(kept, rec)
	}
	t.Records = kept
	t.cleaned = true
	return t
}

func asFloat(value interface{}) *float64 {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	// "NaN" and "Inf" parse cleanly but no aggregation can bucket or
	// correlate them; treat non-finite values as missing.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
