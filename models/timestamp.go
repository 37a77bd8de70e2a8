package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// SQLTimeLayout is the datetime format SQL backends emit
const SQLTimeLayout = "2006-01-02 15:04:05"

// Timestamp is a message time. It decodes RFC 3339, SQL datetime and epoch
// milliseconds. Anything else decodes to the zero time.
type Timestamp struct {
	time.Time
}

// At wraps t
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON never fails on a well-formed JSON value
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	ts.Time = time.Time{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		if ms, err := strconv.ParseFloat(string(data), 64); err == nil {
			ts.Time = time.UnixMilli(int64(ms)).UTC()
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	ts.Time = parseTimestamp(s)
	return nil
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(SQLTimeLayout, s); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
