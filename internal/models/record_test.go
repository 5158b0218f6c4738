package models

import (
	"math"
	"testing"
	"time"
)

// TestCanonicalColumn tests field-name normalization across source variants
func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		field  string
		want   Column
		wantOK bool
	}{
		{"Date", ColumnDate, true},
		{"date", ColumnDate, true},
		{"Temperature(°C)", ColumnTemperature, true},
		{"temperature", ColumnTemperature, true},
		{"Humidity (%)", ColumnHumidity, true},
		{"Barometer (inHg)", ColumnPressure, true},
		{"pressure", ColumnPressure, true},
		{"Weather", ColumnCondition, true},
		{"Wind (mph)", ColumnWind, true},
		{"_id", "", false},
		{"Visibility", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := CanonicalColumn(tt.field)
			if ok != tt.wantOK {
				t.Fatalf("CanonicalColumn(%q) ok = %v, want %v", tt.field, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CanonicalColumn(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

// TestNewTableFromDocuments tests raw document normalization
func TestNewTableFromDocuments(t *testing.T) {
	docs := []RawDocument{
		{
			"_id":              "abc123",
			"Date":             "2023-03-15",
			"Temperature(°C)":  22.5,
			"Humidity (%)":     int32(60),
			"Barometer (inHg)": "29.92",
			"Weather":          " Sunny ",
			"Wind (mph)":       "5 mph ESE",
		},
		{
			"date":        "2023-04-01",
			"temperature": 18,
			"weather":     "Rainy",
		},
	}

	table := NewTableFromDocuments(docs)

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}

	if !table.HasColumn(ColumnDate, ColumnTemperature, ColumnHumidity, ColumnPressure, ColumnCondition, ColumnWind) {
		t.Errorf("expected all canonical columns present, got %v", table.Columns)
	}

	rec := table.Records[0]
	if rec.Temperature == nil || *rec.Temperature != 22.5 {
		t.Errorf("Temperature = %v, want 22.5", rec.Temperature)
	}
	if rec.Humidity == nil || *rec.Humidity != 60 {
		t.Errorf("Humidity = %v, want 60", rec.Humidity)
	}
	if rec.Pressure == nil || *rec.Pressure != 29.92 {
		t.Errorf("Pressure = %v, want 29.92 (string coercion)", rec.Pressure)
	}
	if rec.Condition != "Sunny" {
		t.Errorf("Condition = %q, want %q", rec.Condition, "Sunny")
	}

	// Second document uses the lowercase variant and omits columns.
	rec = table.Records[1]
	if rec.Temperature == nil || *rec.Temperature != 18 {
		t.Errorf("Temperature = %v, want 18 (int coercion)", rec.Temperature)
	}
	if rec.Humidity != nil {
		t.Errorf("Humidity = %v, want nil for absent field", rec.Humidity)
	}
}

// TestNewTableFromDocuments_NonFiniteValues tests that NaN and infinite
// numeric values are treated as missing at the adapter boundary
func TestNewTableFromDocuments_NonFiniteValues(t *testing.T) {
	docs := []RawDocument{
		{"Date": "2023-05-01", "Temperature(°C)": "NaN"},
		{"Date": "2023-05-02", "Temperature(°C)": "Inf"},
		{"Date": "2023-05-03", "Temperature(°C)": "-Inf"},
		{"Date": "2023-05-04", "Temperature(°C)": math.NaN()},
		{"Date": "2023-05-05", "Temperature(°C)": math.Inf(1)},
		{"Date": "2023-05-06", "Temperature(°C)": 12.5},
	}

	table := NewTableFromDocuments(docs)

	for i := 0; i < 5; i++ {
		if table.Records[i].Temperature != nil {
			t.Errorf("record %d Temperature = %v, want nil for non-finite value",
				i, *table.Records[i].Temperature)
		}
	}
	if table.Records[5].Temperature == nil || *table.Records[5].Temperature != 12.5 {
		t.Errorf("record 5 Temperature = %v, want 12.5", table.Records[5].Temperature)
	}
}

// TestWeatherTable_Clean tests date parsing, month derivation, and the
// drop-and-count policy for unparseable dates
func TestWeatherTable_Clean(t *testing.T) {
	table := NewTableFromDocuments([]RawDocument{
		{"Date": "2021-03-10", "Weather": "Sunny"},
		{"Date": "not-a-date", "Weather": "Rainy"},
		{"Date": "1999-03-01", "Weather": "Cloudy"},
		{"Date": "2023-12-31", "Weather": "Foggy"},
	})

	table.Clean()

	if table.Len() != 3 {
		t.Fatalf("Len() after Clean = %d, want 3", table.Len())
	}
	if table.DroppedRows != 1 {
		t.Errorf("DroppedRows = %d, want 1", table.DroppedRows)
	}

	// March maps to month 3 and "March" for every year.
	for _, i := range []int{0, 1} {
		rec := table.Records[i]
		if rec.Month != 3 {
			t.Errorf("record %d Month = %d, want 3", i, rec.Month)
		}
		if rec.MonthName != "March" {
			t.Errorf("record %d MonthName = %q, want %q", i, rec.MonthName, "March")
		}
	}

	if table.Records[2].Month != 12 || table.Records[2].MonthName != "December" {
		t.Errorf("record 2 = (%d, %q), want (12, December)",
			table.Records[2].Month, table.Records[2].MonthName)
	}
}

// TestWeatherTable_Clean_Idempotent tests that clean(clean(T)) == clean(T)
func TestWeatherTable_Clean_Idempotent(t *testing.T) {
	table := NewTableFromDocuments([]RawDocument{
		{"Date": "2022-07-04", "Temperature(°C)": 30.0},
		{"Date": "garbage"},
	})

	table.Clean()
	recordsAfterFirst := make([]WeatherRecord, len(table.Records))
	copy(recordsAfterFirst, table.Records)
	droppedAfterFirst := table.DroppedRows

	table.Clean()

	if table.Len() != len(recordsAfterFirst) {
		t.Fatalf("second Clean changed length: %d -> %d", len(recordsAfterFirst), table.Len())
	}
	if table.DroppedRows != droppedAfterFirst {
		t.Errorf("second Clean changed DroppedRows: %d -> %d", droppedAfterFirst, table.DroppedRows)
	}
	for i, rec := range table.Records {
		if rec != recordsAfterFirst[i] {
			t.Errorf("record %d changed on second Clean: %+v -> %+v", i, recordsAfterFirst[i], rec)
		}
	}
}

// TestParseTimestamp tests the accepted date layouts
func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"iso date", "2023-01-15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", "2023-01-15T08:30:00Z", time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC), false},
		{"datetime", "2023-01-15 08:30:00", time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC), false},
		{"us slash", "01/15/2023", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"whitespace", " 2023-01-15 ", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "fifteenth of january", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestDataUnavailableError tests the adapter-boundary error type
func TestDataUnavailableError(t *testing.T) {
	err := &DataUnavailableError{Kind: ErrConnectionFailure}

	if !err.IsTransient() {
		t.Error("connection failures should be transient")
	}

	err = &DataUnavailableError{Kind: ErrMissingFile}
	if err.IsTransient() {
		t.Error("missing seed file should not be transient")
	}
}
