// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"time"
)

// Clock sumber waktu yang bisa diganti di test.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

// DateOf tanggal kalender t di zona loc, disimpan sebagai 00:00 UTC
// supaya perbandingan tanggal di DB (postgres/sqlite) konsisten.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped menambah n bulan; jika tanggal tidak ada di bulan tujuan
// (mis. 31 Feb) hasilnya hari terakhir bulan tersebut.
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func AddYearsClamped(t time.Time, n int) time.Time {
	return AddMonthsClamped(t, n*12)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
