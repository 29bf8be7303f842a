// Package optimize exposes scenario solving over HTTP.
package optimize

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/energylp/core/assets"
	"github.com/kilianp07/energylp/core/factory"
	"github.com/kilianp07/energylp/core/intervals"
	"github.com/kilianp07/energylp/core/logger"
	"github.com/kilianp07/energylp/core/lp"
	"github.com/kilianp07/energylp/core/optimizer"
	"github.com/kilianp07/energylp/core/results"
	"github.com/kilianp07/energylp/pkg/export"
)

// Optimizer solves one scenario.
type Optimizer interface {
	Optimize(as []assets.Asset, data *intervals.Data) (*results.SimulationResult, error)
}

// Request is the body of POST /api/optimize.
type Request struct {
	Assets []factory.ModuleConfig `json:"assets"`
	Data   *intervals.Data        `json:"data"`
}

// maxBody bounds the request body.
const maxBody = 8 << 20

// NewHandler returns an HTTP handler solving the posted scenario and
// answering with the JSON result. Requests must include an Authorization
// header with "Bearer <token>" when token is non-empty. Infeasible runs are
// answered with 200 and feasible=false.
func NewHandler(opt Optimizer, token string, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
		as, err := assets.NewAll(req.Assets)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := opt.Optimize(as, req.Data)
		if err != nil {
			code := status(err)
			if code == http.StatusInternalServerError {
				log.Errorf("optimize: %v", err)
			}
			http.Error(w, err.Error(), code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, res); err != nil {
			log.Errorf("write result %s: %v", res.RunID, err)
		}
	})
}

// status maps an optimisation error to an HTTP status code.
func status(err error) int {
	var balance *results.BalanceError
	var spill *results.SpillError
	switch {
	case errors.Is(err, assets.ErrInvalidAsset),
		errors.Is(err, intervals.ErrNoIntervals),
		errors.Is(err, intervals.ErrSeriesLength),
		errors.Is(err, intervals.ErrChargeEvents),
		errors.Is(err, optimizer.ErrSiteCount),
		errors.Is(err, optimizer.ErrDuplicateAsset):
		return http.StatusBadRequest
	case errors.As(err, &spill), errors.As(err, &balance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lp.ErrTimeLimit):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
