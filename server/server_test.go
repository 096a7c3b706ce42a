package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bikeshop-prices/models"
	"bikeshop-prices/services"
	"bikeshop-prices/utils"
)

type stubSource struct {
	rows []models.RawRow
	err  error
}

func (s *stubSource) LoadRows(ctx context.Context) ([]models.RawRow, error) {
	return s.rows, s.err
}

func newTestServer(t *testing.T, src *stubSource) *httptest.Server {
	t.Helper()
	logger := utils.NewNopLogger()
	normalizer := services.NewNormalizer(logger, services.AustrianCPI, services.ReferenceYear)
	dash := services.NewDashboard(logger, src, normalizer, nil)
	if err := dash.Reload(context.Background()); err != nil && src.err == nil {
		t.Fatalf("Reload: %v", err)
	}
	srv := httptest.NewServer(NewServer(dash, logger).SetupRoutes())
	t.Cleanup(srv.Close)
	return srv
}

func testRows() []models.RawRow {
	return []models.RawRow{
		{"name": "Radwerkstatt", "First Price": "100", "First Price Date": "2020-03-01", "Current Price": "150"},
		{"name": "Bike Doctor", "Current Price": "55"},
		{"name": "Velo Vienna"},
	}
}

func decode(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]interface{}
	decode(t, res, &body)
	if res.StatusCode != http.StatusOK || body["status"] != "ok" || body["records"] != float64(3) {
		t.Errorf("health = %d %v", res.StatusCode, body)
	}
}

func TestRecordsSorted(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	res, err := http.Get(srv.URL + "/api/v1/records?sort=currentPrice&order=desc")
	if err != nil {
		t.Fatal(err)
	}
	var body recordsResponse
	decode(t, res, &body)

	if body.Total != 3 || body.Count != 3 {
		t.Fatalf("total/count = %d/%d; want 3/3", body.Total, body.Count)
	}
	got := []string{body.Records[0].Name, body.Records[1].Name, body.Records[2].Name}
	want := []string{"Radwerkstatt", "Bike Doctor", "Velo Vienna"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v; want %v", got, want)
			break
		}
	}
}

func TestRecordsBadSort(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	for _, q := range []string{"sort=rating", "sort=name&order=sideways"} {
		res, err := http.Get(srv.URL + "/api/v1/records?" + q)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400", q, res.StatusCode)
		}
	}
}

func TestReplaceSettingsFiltersViews(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	body := `{"currentPrice":{"has":true,"missing":false},"query":"rad"}`
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/settings", strings.NewReader(body))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("PUT settings status = %d", res.StatusCode)
	}

	res, err = http.Get(srv.URL + "/api/v1/summary")
	if err != nil {
		t.Fatal(err)
	}
	var summary summaryResponse
	decode(t, res, &summary)
	if summary.Total != 3 || summary.Filtered != 1 {
		t.Errorf("summary = %d of %d; want 1 of 3", summary.Filtered, summary.Total)
	}
	if summary.Average == nil || summary.Average.Trend != models.TrendPositive {
		t.Errorf("average = %+v; want a positive trend", summary.Average)
	}
	if summary.Settings.Query != "rad" {
		t.Errorf("settings query = %q", summary.Settings.Query)
	}

	res, err = http.Get(srv.URL + "/api/v1/histogram")
	if err != nil {
		t.Fatal(err)
	}
	var histogram []float64
	decode(t, res, &histogram)
	if len(histogram) != 1 {
		t.Errorf("histogram = %v; want one value", histogram)
	}
}

func TestReplaceSettingsRejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/settings", strings.NewReader(`{"minRating":4}`))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", res.StatusCode)
	}
}

func TestReloadFailure(t *testing.T) {
	src := &stubSource{rows: testRows()}
	srv := newTestServer(t, src)
	src.err = errors.New("sheet unavailable")

	res, err := http.Post(srv.URL+"/api/v1/reload", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d; want 502", res.StatusCode)
	}

	res, err = http.Get(srv.URL + "/api/v1/records")
	if err != nil {
		t.Fatal(err)
	}
	var body recordsResponse
	decode(t, res, &body)
	if body.Total != 3 {
		t.Errorf("records after failed reload = %d; want previous 3", body.Total)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	res, err := http.Get(srv.URL + "/api/v1/export.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, res.Body); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Errorf("export has %d lines; want header + 3", lines)
	}
}

func TestReplaceSettingsRejectsBadDateBound(t *testing.T) {
	srv := newTestServer(t, &stubSource{rows: testRows()})

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/settings", strings.NewReader(`{"firstDateFrom":"2020-13-99"}`))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", res.StatusCode)
	}

	res, err = http.Get(srv.URL + "/api/v1/settings")
	if err != nil {
		t.Fatal(err)
	}
	var current models.SelectionSettings
	decode(t, res, &current)
	if current.FirstDateFrom != "" {
		t.Errorf("rejected settings were installed: %+v", current)
	}
}

type cancelCheckingSource struct {
	rows    []models.RawRow
	ctxErrs []error
}

func (s *cancelCheckingSource) LoadRows(ctx context.Context) ([]models.RawRow, error) {
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.rows, nil
}

func TestReloadIgnoresClientCancellation(t *testing.T) {
	logger := utils.NewNopLogger()
	src := &cancelCheckingSource{rows: testRows()}
	dash := services.NewDashboard(logger, src, services.NewNormalizer(logger, services.AustrianCPI, services.ReferenceYear), nil)
	srv := NewServer(dash, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.Reload(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
	if len(src.ctxErrs) != 1 || src.ctxErrs[0] != nil {
		t.Errorf("load saw context errors %v; want none", src.ctxErrs)
	}
	if got := len(dash.Snapshot().Records); got != 3 {
		t.Errorf("snapshot has %d records; want 3", got)
	}
}
