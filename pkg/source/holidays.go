package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultHolidaysURL is the nager.at public holidays endpoint.
	DefaultHolidaysURL = "https://date.nager.at/api/v2/PublicHolidays"
	DefaultCountry     = "JP"
)

// Holidays fetches public holidays per year from nager.at.
type Holidays struct {
	client  *http.Client
	baseURL string
	country string
}

// NewHolidays creates a holiday fetcher for one country.
func NewHolidays(baseURL, country string, timeout time.Duration) *Holidays {
	if baseURL == "" {
		baseURL = DefaultHolidaysURL
	}
	if country == "" {
		country = DefaultCountry
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Holidays{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
	}
}

func (h *Holidays) Name() Name { return SourceHolidays }

// FetchYears concatenates FetchYear results in the given year order.
func (h *Holidays) FetchYears(ctx context.Context, years []int) ([]HolidayRecord, error) {
	var all []HolidayRecord
	for _, year := range years {
		records, err := h.FetchYear(ctx, year)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

type nagerHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
}

// FetchYear fetches the holidays of a single year.
func (h *Holidays) FetchYear(ctx context.Context, year int) ([]HolidayRecord, error) {
	reqURL := fmt.Sprintf("%s/%d/%s", h.baseURL, year, h.country)

	body, err := getBody(ctx, h.client, SourceHolidays, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var raw []nagerHoliday
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ShapeError{Source: SourceHolidays, Reason: "decode body", Err: err}
	}
	if raw == nil {
		return nil, &ShapeError{Source: SourceHolidays, Reason: "expected a JSON array"}
	}

	records := make([]HolidayRecord, 0, len(raw))
	for i, hol := range raw {
		date, err := time.Parse(time.DateOnly, hol.Date)
		if err != nil {
			return nil, &ShapeError{Source: SourceHolidays, Reason: fmt.Sprintf("[%d].date", i), Err: err}
		}
		if hol.LocalName == "" {
			return nil, &ShapeError{Source: SourceHolidays, Reason: fmt.Sprintf("[%d].localName missing", i)}
		}
		records = append(records, HolidayRecord{
			Date:   date,
			Period: YearMonth{Year: date.Year(), Month: int(date.Month())},
			Name:   hol.LocalName,
		})
	}
	return records, nil
}
