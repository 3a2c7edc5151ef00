package dbtime

import (
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{d(2024, 1, 31), 1, d(2024, 2, 29)},
		{d(2023, 1, 31), 1, d(2023, 2, 28)},
		{d(2024, 3, 31), 1, d(2024, 4, 30)},
		{d(2024, 11, 30), 3, d(2025, 2, 28)},
		{d(2024, 5, 15), 12, d(2025, 5, 15)},
	}
	for _, tc := range cases {
		if got := AddMonthsClamped(tc.in, tc.n); !got.Equal(tc.want) {
			t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s", tc.in.Format("2006-01-02"), tc.n, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestAddYearsClamped_LeapDay(t *testing.T) {
	if got := AddYearsClamped(d(2024, 2, 29), 1); !got.Equal(d(2025, 2, 28)) {
		t.Fatalf("got %s", got)
	}
	if got := AddYearsClamped(d(2024, 2, 29), 4); !got.Equal(d(2028, 2, 29)) {
		t.Fatalf("got %s", got)
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	jkt, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skip("tzdata tidak tersedia")
	}
	// 2024-01-30 20:00 UTC = 2024-01-31 03:00 WIB
	got := DateOf(time.Date(2024, 1, 30, 20, 0, 0, 0, time.UTC), jkt)
	if !got.Equal(d(2024, 1, 31)) {
		t.Fatalf("got %s", got)
	}
}
