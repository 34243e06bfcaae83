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
	"time"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/recorder"
	"github.com/zintix-labs/randlab/server/httperr"
	"github.com/zintix-labs/randlab/server/svrcfg"
)

type DrawHandler struct {
	cfg *svrcfg.SvrCfg
}

func NewDrawHandler(sCfg *svrcfg.SvrCfg) (*DrawHandler, error) {
	if sCfg == nil {
		return nil, errs.NewFatal("svr config is required")
	}
	return &DrawHandler{cfg: sCfg}, nil
}

// Draw 產生一批變量並回傳。
//
// format=json（預設）回 JSON 陣列；format=blob 回 zstd 壓縮的
// recorder 串流（application/octet-stream），大批量時省下 JSON 編碼成本，
// 讀回端用 recorder.Replay 還原。
func (dh *DrawHandler) Draw(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type DrawRequestBody struct {
		Kind   string  `json:"kind"`
		N      int     `json:"n"`
		Seed   *uint64 `json:"seed,omitempty"`
		Offset uint64  `json:"offset"`
		Lanes  int     `json:"lanes"`
		Mean   float64 `json:"mean"`
		Std    float64 `json:"std"`
		Lambda float64 `json:"lambda"`
		Format string  `json:"format"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type DrawResponse struct {
		Kind     string    `json:"kind"`
		Seed     uint64    `json:"seed"`
		Offset   uint64    `json:"offset"`
		Lanes    int       `json:"lanes"`
		Floats   []float64 `json:"floats,omitempty"`
		Uints    []uint32  `json:"uints,omitempty"`
		UsedTime int64     `json:"used_ms"`
	}
	// ---
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(DrawRequestBody)
	if q.Method == http.MethodGet {
		vals := q.URL.Query()
		req.Kind = vals.Get("kind")
		req.Format = vals.Get("format")

		n, ok, err := qInt(vals, "n")
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if !ok {
			httperr.Errs(w, errs.NewInvalidParam("n is required"))
			return
		}
		req.N = n

		if seed, ok, err := qUint64(vals, "seed"); err != nil {
			httperr.Errs(w, err)
			return
		} else if ok {
			req.Seed = &seed
		}
		var err2 error
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
	if req.N < 1 || req.N > dh.cfg.MaxDraws {
		httperr.Errs(w, errs.NewInvalidParam("n must be between 1 and "+strconv.Itoa(dh.cfg.MaxDraws)))
		return
	}
	if req.Lanes < 1 || req.Lanes > dh.cfg.Lanes {
		req.Lanes = dh.cfg.Lanes
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
		httperr.Log(dh.cfg.Log, "build generator err", err)
		httperr.Errs(w, err)
		return
	}
	defer g.Destroy()

	start := time.Now()
	var floats []float64
	var uints []uint32
	switch req.Kind {
	case randlab.KindRaw:
		uints = make([]uint32, req.N)
		err = g.GenerateUint32(uints)
	case randlab.KindUniform:
		floats = make([]float64, req.N)
		err = g.GenerateUniform(floats)
	case randlab.KindNormal:
		floats = make([]float64, req.N)
		err = g.GenerateNormal(floats, req.Mean, req.Std)
	case randlab.KindLogNormal:
		floats = make([]float64, req.N)
		err = g.GenerateLogNormal(floats, req.Mean, req.Std)
	case randlab.KindPoisson:
		uints = make([]uint32, req.N)
		err = g.GeneratePoisson(uints, req.Lambda)
	default:
		httperr.Errs(w, errs.NewInvalidParam("unknown kind "+req.Kind))
		return
	}
	if err == nil {
		err = g.Wait()
	}
	if err != nil {
		httperr.Log(dh.cfg.Log, "generate err", err)
		httperr.Errs(w, err)
		return
	}
	used := time.Since(start)

	if req.Format == "blob" {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Randlab-Kind", req.Kind)
		w.Header().Set("X-Randlab-Seed", strconv.FormatUint(*req.Seed, 10))
		w.Header().Set("X-Randlab-Count", strconv.Itoa(req.N))
		rec, err := recorder.NewDrawRecorder(w)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if uints != nil {
			err = rec.RecordUints(uints)
		} else {
			err = rec.RecordFloats(floats)
		}
		if err == nil {
			err = rec.Close()
		}
		if err != nil {
			// headers 已送出，只能記 log
			httperr.Log(dh.cfg.Log, "write blob err", err)
		}
		return
	}

	resp := DrawResponse{
		Kind:     req.Kind,
		Seed:     *req.Seed,
		Offset:   req.Offset,
		Lanes:    req.Lanes,
		Floats:   floats,
		Uints:    uints,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
