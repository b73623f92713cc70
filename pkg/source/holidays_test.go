package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holidays2022 = `[
	{"date":"2022-01-01","localName":"元日","name":"New Year's Day","countryCode":"JP"},
	{"date":"2022-01-10","localName":"成人の日","name":"Coming of Age Day","countryCode":"JP"},
	{"date":"2022-11-23","localName":"勤労感謝の日","name":"Labour Thanksgiving Day","countryCode":"JP"}
]`

func TestHolidays_FetchYear(t *testing.T) {
	srv := resasServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2022/JP", r.URL.Path)
		fmt.Fprint(w, holidays2022)
	})

	records, err := NewHolidays(srv.URL+"/", "", 0).FetchYear(context.Background(), 2022)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, "2022-1", records[0].Period.String())
	assert.Equal(t, "元日", records[0].Name)
	assert.Equal(t, "成人の日", records[1].Name)
	assert.Equal(t, "2022-11", records[2].Period.String())
}

func TestHolidays_FetchYears(t *testing.T) {
	srv := resasServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2021/JP":
			fmt.Fprint(w, `[{"date":"2021-05-03","localName":"憲法記念日"}]`)
		case "/2022/JP":
			fmt.Fprint(w, holidays2022)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	h := NewHolidays(srv.URL, "JP", 0)
	records, err := h.FetchYears(context.Background(), []int{2021, 2022})
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, 2021, records[0].Period.Year)

	_, err = h.FetchYears(context.Background(), []int{2022, 1999})
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.Equal(t, SourceHolidays, upErr.Source)
}

func TestHolidays_FetchYearShapeErrors(t *testing.T) {
	bodies := map[string]string{
		"object":       `{"date":"2022-01-01"}`,
		"null":         `null`,
		"bad date":     `[{"date":"01/01/2022","localName":"元日"}]`,
		"missing name": `[{"date":"2022-01-01"}]`,
		"truncated":    `[{"date":`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := resasServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			})
			_, err := NewHolidays(srv.URL, "JP", 0).FetchYear(context.Background(), 2022)
			var shapeErr *ShapeError
			assert.True(t, errors.As(err, &shapeErr), "got %v", err)
		})
	}
}
