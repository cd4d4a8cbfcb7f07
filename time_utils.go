package odbcscan

import (
	"time"
	"unsafe"
)

// TimeFromTimestampBuffer decodes a SQL_TIMESTAMP_STRUCT fetched into buf.
func TimeFromTimestampBuffer(buf []byte) time.Time {
	ts := (*sqlTimestamp)(unsafe.Pointer(&buf[0]))
	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), int(ts.Fraction), time.UTC)
}

// TimeFromDateBuffer decodes a SQL_DATE_STRUCT fetched into buf.
func TimeFromDateBuffer(buf []byte) time.Time {
	d := (*sqlDate)(unsafe.Pointer(&buf[0]))
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
}

// TimeFromTimeBuffer decodes a SQL_TIME_STRUCT fetched into buf. The date
// part is the Unix epoch day.
func TimeFromTimeBuffer(buf []byte) time.Time {
	t := (*sqlTime)(unsafe.Pointer(&buf[0]))
	return time.Date(1970, time.January, 1, int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// TimestampBufferFromTime encodes a time.Time as a SQL_TIMESTAMP_STRUCT
// for parameter binding.
func TimestampBufferFromTime(t time.Time) []byte {
	t = t.UTC()
	buf := make([]byte, int(unsafe.Sizeof(sqlTimestamp{})))
	ts := (*sqlTimestamp)(unsafe.Pointer(&buf[0]))
	ts.Year = SQLSMALLINT(t.Year())
	ts.Month = SQLUSMALLINT(t.Month())
	ts.Day = SQLUSMALLINT(t.Day())
	ts.Hour = SQLUSMALLINT(t.Hour())
	ts.Minute = SQLUSMALLINT(t.Minute())
	ts.Second = SQLUSMALLINT(t.Second())
	ts.Fraction = SQLUINTEGER(t.Nanosecond())
	return buf
}
