package civil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDatePrefix(t *testing.T) {
	cases := map[string]Date{
		"2024-03-05":                {2024, time.March, 5},
		"2024-03-05T23:30:00-08:00": {2024, time.March, 5},
		"2024-12-31T00:00:00.000Z":  {2024, time.December, 31},
		" 2025-01-01 ":              {2025, time.January, 1},
	}
	for raw, want := range cases {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "2024-3-5", "2024/03/05", "2023-02-29", "2024-13-01", "abcd-ef-gh"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestScanUsesLiteralComponents(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*3600)
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.December, 25, 0, 0, 0, 0, loc)))
	assert.Equal(t, MustParse("2024-12-25"), d)

	require.NoError(t, d.Scan([]byte("2023-07-04")))
	assert.Equal(t, MustParse("2023-07-04"), d)

	assert.Error(t, d.Scan(42))
}

func TestArithmetic(t *testing.T) {
	base := MustParse("2024-12-25")
	assert.Equal(t, MustParse("2024-12-22"), base.AddDays(-3))
	assert.Equal(t, MustParse("2025-01-25"), base.AddMonths(1))
	assert.Equal(t, MustParse("2023-12-25"), base.AddYears(-1))
	assert.Equal(t, MustParse("2024-03-02"), MustParse("2024-01-31").AddMonths(1))
	assert.Equal(t, MustParse("2025-03-01"), MustParse("2024-02-29").AddYears(1))
	assert.Equal(t, time.Wednesday, base.Weekday())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 31, DaysIn(2024, time.December))
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Start *Date `json:"start"`
	}
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-06-01T00:00:00Z"}`), &p))
	require.NotNil(t, p.Start)
	assert.Equal(t, MustParse("2024-06-01"), *p.Start)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-06-01"}`, string(out))
}

func TestCompare(t *testing.T) {
	a := MustParse("2024-01-31")
	b := MustParse("2024-02-01")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
}
