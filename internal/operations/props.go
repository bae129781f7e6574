package operations

import (
	"bytes"
	"errors"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"realty-engine/internal/model"
)

var (
	errMissingProperties = errors.New("properties are required")
	errTrailingData      = errors.New("unexpected data after properties object")
)

// decodeProps strictly decodes instruction properties: unknown keys and
// anything after the first value are rejected so typos surface instead of
// silently defaulting to zero.
func decodeProps(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return errMissingProperties
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func invalidProperties(err error) []model.CalculationMessage {
	return []model.CalculationMessage{model.Critical(CodeInvalidProperties, "Invalid properties: "+err.Error())}
}

// parseDate parses "YYYY-MM-DD" without going through time.Parse layout
// handling. Returns zero time and false on invalid input.
func parseDate(s string) (time.Time, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for i := 0; i < len(s); i++ {
		if i != 4 && i != 7 && (s[i] < '0' || s[i] > '9') {
			return time.Time{}, false
		}
	}
	y := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	m := time.Month(int(s[5]-'0')*10 + int(s[6]-'0'))
	d := int(s[8]-'0')*10 + int(s[9]-'0')
	if m < 1 || m > 12 || d < 1 || d > daysIn(y, m) {
		return time.Time{}, false
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
