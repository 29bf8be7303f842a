package sites

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/energylp/core/metrics/eco"
)

func TestKPIHandler(t *testing.T) {
	store := eco.NewMemoryStore()
	day := eco.Day(time.Now())
	if err := store.Add(eco.Record{Site: "plant", Date: day, ImportedMWh: 4, ExportedMWh: 1, CarbonTonnes: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	h := NewKPIHandler(store)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sites/plant/kpis", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []struct {
		Date            string  `json:"date"`
		Runs            int     `json:"runs"`
		NetImportMWh    float64 `json:"net_import_mwh"`
		CarbonIntensity float64 `json:"carbon_intensity"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Runs != 1 || out[0].NetImportMWh != 3 || out[0].CarbonIntensity != 0.5 {
		t.Fatalf("unexpected output %#v", out)
	}
	if out[0].Date != day.Format("2006-01-02") {
		t.Fatalf("date %s", out[0].Date)
	}
}

func TestKPIHandler_Errors(t *testing.T) {
	h := NewKPIHandler(eco.NewMemoryStore())
	tests := []struct {
		method, path string
		code         int
	}{
		{http.MethodPost, "/api/sites/plant/kpis", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/sites/plant", http.StatusNotFound},
		{http.MethodGet, "/api/sites//kpis", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
		if rr.Code != tt.code {
			t.Fatalf("%s %s: got %d want %d", tt.method, tt.path, rr.Code, tt.code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sites/unknown/kpis", nil))
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
}
