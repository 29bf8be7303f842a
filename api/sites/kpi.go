// Package sites exposes the daily energy and carbon records of each site.
package sites

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/energylp/core/metrics/eco"
)

// NewKPIHandler exposes daily site KPIs via GET /api/sites/{site}/kpis.
// start and end are RFC3339 timestamps; end defaults to now and start to
// the same day.
func NewKPIHandler(store eco.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/api/sites/")
		parts := strings.Split(path, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "kpis" {
			http.NotFound(w, r)
			return
		}
		site := parts[0]
		end, _ := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if end.IsZero() {
			end = time.Now()
		}
		start, _ := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		if start.IsZero() {
			start = end
		}
		recs, err := store.Query(site, start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		type out struct {
			Date            string  `json:"date"`
			Runs            int     `json:"runs"`
			ImportedMWh     float64 `json:"imported_mwh"`
			ExportedMWh     float64 `json:"exported_mwh"`
			NetImportMWh    float64 `json:"net_import_mwh"`
			CarbonTonnes    float64 `json:"carbon_t"`
			CarbonIntensity float64 `json:"carbon_intensity"`
		}
		outSlice := make([]out, len(recs))
		for i, r := range recs {
			outSlice[i] = out{
				Date:            r.Date.Format("2006-01-02"),
				Runs:            r.Runs,
				ImportedMWh:     r.ImportedMWh,
				ExportedMWh:     r.ExportedMWh,
				NetImportMWh:    r.NetImportMWh(),
				CarbonTonnes:    r.CarbonTonnes,
				CarbonIntensity: r.CarbonIntensity(),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(outSlice)
	})
}
