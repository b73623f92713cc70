package source

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearMonth_String(t *testing.T) {
	assert.Equal(t, "2021-1", YearMonth{Year: 2021, Month: 1}.String())
	assert.Equal(t, "2021-12", YearMonth{Year: 2021, Month: 12}.String())
}

func TestYearMonth_OrdersNumerically(t *testing.T) {
	periods := []YearMonth{{2021, 10}, {2021, 2}, {2020, 12}, {2021, 1}}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	var got []string
	for _, p := range periods {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"2020-12", "2021-1", "2021-2", "2021-10"}, got)
}

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2022-1")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2022, Month: 1}, ym)

	ym, err = ParseYearMonth("2022-01")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{Year: 2022, Month: 1}, ym)

	for _, bad := range []string{"", "2022", "2022-13", "2022-x", "abcd-1"} {
		_, err := ParseYearMonth(bad)
		assert.Error(t, err, bad)
	}
}
