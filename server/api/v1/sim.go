// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/server/httperr"
	"github.com/zintix-labs/randlab/server/svrcfg"
	"github.com/zintix-labs/randlab/stats"
)

type SimHandler struct {
	cfg *svrcfg.SvrCfg
}

func NewSimHandler(sCfg *svrcfg.SvrCfg) (*SimHandler, error) {
	if sCfg == nil {
		return nil, errs.NewFatal("svr config is required")
	}
	return &SimHandler{cfg: sCfg}, nil
}

// Sim 跑一條長批次產生管線並回傳彙總統計（不回傳變量本身）。
func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimRequestBody struct {
		Kind   string  `json:"kind"`
		Total  int     `json:"total"`
		Batch  int     `json:"batch"`
		Seed   *uint64 `json:"seed,omitempty"`
		Offset uint64  `json:"offset"`
		Lanes  int     `json:"lanes"`
		Mean   float64 `json:"mean"`
		Std    float64 `json:"std"`
		Lambda float64 `json:"lambda"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		Stats    *stats.BatchReport `json:"stats"`
		UsedTime int64              `json:"used_ms"`
	}
	// ---
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(SimRequestBody)
	if q.Method == http.MethodGet {
		vals := q.URL.Query()
		req.Kind = vals.Get("kind")

		total, ok, err := qInt(vals, "total")
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if !ok {
			httperr.Errs(w, errs.NewInvalidParam("total is required"))
			return
		}
		req.Total = total

		if seed, ok, err := qUint64(vals, "seed"); err != nil {
			httperr.Errs(w, err)
			return
		} else if ok {
			req.Seed = &seed
		}
		var err2 error
		if req.Batch, _, err2 = qInt(vals, "batch"); err2 != nil {
			httperr.Errs(w, err2)
			return
		}
		if req.Offset, _, err2 = qUint64(vals, "offset"); err2 != nil {
			httperr.Errs(w, err2)
			return
		}
		if req.Lanes, _, err2 = qInt(vals, "lanes"); err2 != nil {
			httperr.Errs(w, err2)
			return
		}
		if req.Mean, _, err2 = qFloat(vals, "mean"); err2 != nil {
			httperr.Errs(w, err2)
			return
		}
		if req.Std, _, err2 = qFloat(vals, "std"); err2 != nil {
			httperr.Errs(w, err2)
			return
		}
		if req.Lambda, _, err2 = qFloat(vals, "lambda"); err2 != nil {
			httperr.Errs(w, err2)
			return
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewInvalidParam("invalid json:"+err.Error()))
			return
		}
	}

	// 業務檢驗
	if req.Total < 1 || req.Total > sh.cfg.MaxDraws {
		httperr.Errs(w, errs.NewInvalidParam("total must be between 1 and "+strconv.Itoa(sh.cfg.MaxDraws)))
		return
	}
	if req.Lanes < 1 || req.Lanes > sh.cfg.Lanes {
		req.Lanes = sh.cfg.Lanes
	}
	if req.Seed == nil {
		s, err := randomSeed()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		req.Seed = &s
	}

	g, err := randlab.NewGenerator(randlab.Config{
		Seed:   *req.Seed,
		Offset: req.Offset,
		Lanes:  req.Lanes,
	})
	if err != nil {
		httperr.Log(sh.cfg.Log, "build generator err", err)
		httperr.Errs(w, err)
		return
	}
	defer g.Destroy()

	sim := randlab.NewSimulator(g)
	rep, used, err := sim.Sim(randlab.SimSpec{
		Kind:   req.Kind,
		Mean:   req.Mean,
		StdDev: req.Std,
		Lambda: req.Lambda,
	}, req.Total, req.Batch, false)
	if err != nil {
		httperr.Log(sh.cfg.Log, "simulate err", err)
		httperr.Errs(w, err)
		return
	}

	resp := SimResponse{
		Stats:    rep,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
