package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRESASURL is the RESAS hotel analysis (group stack) endpoint.
	DefaultRESASURL = "https://opendata.resas-portal.go.jp/api/v1/tourism/hotelAnalysis/groupStack"

	// PrefectureCount is the number of prefecture codes, 1 through 47.
	PrefectureCount = 47
)

// Guests fetches monthly hotel guest counts per prefecture from RESAS.
type Guests struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	concurrency int
}

// NewGuests creates a RESAS guest fetcher. A concurrency below 2 fetches
// prefectures one at a time.
func NewGuests(baseURL, apiKey string, concurrency int, timeout time.Duration) *Guests {
	if baseURL == "" {
		baseURL = DefaultRESASURL
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Guests{
		client:      &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		concurrency: concurrency,
	}
}

func (g *Guests) Name() Name { return SourceRESAS }

// FetchAll fetches every prefecture and concatenates the rows in prefCode
// order. The first failure aborts the whole batch.
func (g *Guests) FetchAll(ctx context.Context) ([]GuestRecord, error) {
	perPref := make([][]GuestRecord, PrefectureCount)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for code := 1; code <= PrefectureCount; code++ {
		eg.Go(func() error {
			records, err := g.FetchPrefecture(ctx, code)
			if err != nil {
				return err
			}
			perPref[code-1] = records
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []GuestRecord
	for _, records := range perPref {
		all = append(all, records...)
	}
	return all, nil
}

// FetchPrefecture fetches the monthly rows for one prefecture and stamps
// each with the prefecture's code and name.
func (g *Guests) FetchPrefecture(ctx context.Context, prefCode int) ([]GuestRecord, error) {
	if prefCode < 1 || prefCode > PrefectureCount {
		return nil, fmt.Errorf("prefCode %d out of range 1..%d", prefCode, PrefectureCount)
	}

	params := url.Values{}
	params.Set("matter", "1")
	params.Set("display", "1")
	params.Set("unit", "1")
	params.Set("prefCode", strconv.Itoa(prefCode))
	reqURL := g.baseURL + "?" + params.Encode()

	body, err := getBody(ctx, g.client, SourceRESAS, reqURL, map[string]string{"X-API-KEY": g.apiKey})
	if err != nil {
		return nil, err
	}

	var resp resasResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ShapeError{Source: SourceRESAS, Reason: "decode body", Err: err}
	}
	return resp.records(prefCode, reqURL)
}

// RESAS reports some failures (bad key, rate limit) as a 200 with an error
// envelope instead of a result.
type resasResponse struct {
	StatusCode json.RawMessage `json:"statusCode"`
	Message    *string         `json:"message"`
	Result     *resasResult    `json:"result"`
}

type resasResult struct {
	PrefName *string    `json:"prefName"`
	Data     []resasRow `json:"data"`
}

type resasRow struct {
	Year   *int   `json:"year"`
	Month  *int   `json:"month"`
	Value0 *int64 `json:"value0"`
	Value1 *int64 `json:"value1"`
	Value2 *int64 `json:"value2"`
	Value3 *int64 `json:"value3"`
	Value4 *int64 `json:"value4"`
}

func (r *resasResponse) records(prefCode int, reqURL string) ([]GuestRecord, error) {
	if r.Result == nil {
		if len(r.StatusCode) > 0 || r.Message != nil {
			msg := ""
			if r.Message != nil {
				msg = *r.Message
			}
			code, _ := strconv.Atoi(trimQuotes(string(r.StatusCode)))
			return nil, &UpstreamError{
				Source:     SourceRESAS,
				URL:        reqURL,
				StatusCode: code,
				Err:        fmt.Errorf("error envelope: %s", msg),
			}
		}
		return nil, &ShapeError{Source: SourceRESAS, Reason: "missing result"}
	}
	if r.Result.PrefName == nil || *r.Result.PrefName == "" {
		return nil, &ShapeError{Source: SourceRESAS, Reason: "missing result.prefName"}
	}
	if r.Result.Data == nil {
		return nil, &ShapeError{Source: SourceRESAS, Reason: "missing result.data"}
	}

	prefName := *r.Result.PrefName
	records := make([]GuestRecord, 0, len(r.Result.Data))
	for i, row := range r.Result.Data {
		rec, err := row.record()
		if err != nil {
			return nil, &ShapeError{Source: SourceRESAS, Reason: fmt.Sprintf("result.data[%d]", i), Err: err}
		}
		rec.PrefCode = prefCode
		rec.PrefName = prefName
		records = append(records, rec)
	}
	return records, nil
}

func (row resasRow) record() (GuestRecord, error) {
	if row.Year == nil || row.Month == nil {
		return GuestRecord{}, errors.New("missing year or month")
	}
	if *row.Month < 1 || *row.Month > 12 {
		return GuestRecord{}, fmt.Errorf("month %d out of range", *row.Month)
	}
	values := []*int64{row.Value0, row.Value1, row.Value2, row.Value3, row.Value4}
	for i, v := range values {
		if v == nil {
			return GuestRecord{}, fmt.Errorf("missing value%d", i)
		}
		if *v < 0 {
			return GuestRecord{}, fmt.Errorf("negative value%d", i)
		}
	}
	return GuestRecord{
		Year:   *row.Year,
		Month:  *row.Month,
		Value0: *row.Value0,
		Value1: *row.Value1,
		Value2: *row.Value2,
		Value3: *row.Value3,
		Value4: *row.Value4,
	}, nil
}

// getBody performs a GET and returns the body of a 2xx response.
func getBody(ctx context.Context, client *http.Client, src Name, reqURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", src, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stayradar/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Source: src, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Source:     src,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Source: src, URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
