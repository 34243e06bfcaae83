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

package randlab

import (
	"io"
	"math"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/recorder"
	"github.com/zintix-labs/randlab/stats"
)

// 批次輸出緩衝的預設大小
const defaultSimBatch = 1 << 20

// 支援的分布名稱
const (
	KindRaw       = "raw"
	KindUniform   = "uniform"
	KindNormal    = "normal"
	KindLogNormal = "lognormal"
	KindPoisson   = "poisson"
)

// SimSpec 描述一條要跑的產生管線：哪個分布、帶什麼參數。
type SimSpec struct {
	Kind   string  // raw / uniform / normal / lognormal / poisson
	Mean   float64 // normal / lognormal
	StdDev float64 // normal / lognormal
	Lambda float64 // poisson
}

func (sp SimSpec) valid() error {
	switch sp.Kind {
	case KindRaw, KindUniform:
		return nil
	case KindPoisson:
		if sp.Lambda <= 0 {
			return errs.NewInvalidParam("sim: lambda must > 0")
		}
		return nil
	case KindNormal, KindLogNormal:
		if sp.StdDev <= 0 {
			return errs.NewInvalidParam("sim: stddev must > 0")
		}
		return nil
	default:
		return errs.NewInvalidParam("sim: unknown kind " + sp.Kind)
	}
}

// Simulator 用既有的 Generator 連續跑長批次，彙總統計並（可選）落地紀錄。
//
// 同一個 Simulator 可連續 Sim 多條管線；每條管線沿用 Generator 當下的
// 序列狀態（統計延續），要從頭重跑請先 Reset Generator。
type Simulator struct {
	gen *Generator
	rec *recorder.DrawRecorder
}

// NewSimulator 包住一個已建好的 Generator。
func NewSimulator(gen *Generator) *Simulator {
	return &Simulator{gen: gen}
}

// Attach 掛上紀錄器；傳 nil 取消。紀錄器的 Close 由呼叫端負責。
func (s *Simulator) Attach(rec *recorder.DrawRecorder) {
	s.rec = rec
}

// Sim 以 batch 為步長連續產生 total 個變量並彙總。
// 回傳統計報告與用時。batch < 1 時使用預設批次大小。
func (s *Simulator) Sim(sp SimSpec, total int, batch int, showpb bool) (*stats.BatchReport, time.Duration, error) {
	if total < 1 {
		return nil, 0, errs.NewInvalidParam("sim: total must > 0")
	}
	if err := sp.valid(); err != nil {
		return nil, 0, err
	}
	if batch < 1 {
		batch = defaultSimBatch
	}
	if batch > total {
		batch = total
	}

	rep := stats.NewBatchReport(sp.Kind, s.gen.Seed(), s.gen.Offset(), s.gen.Lanes(), simHistogram(sp))

	bar := pb.StartNew(total)
	if !showpb {
		bar.SetWriter(io.Discard)
	}

	var fbuf []float64
	var ubuf []uint32
	switch sp.Kind {
	case KindRaw, KindPoisson:
		ubuf = make([]uint32, batch)
	default:
		fbuf = make([]float64, batch)
	}

	for done := 0; done < total; {
		n := min(batch, total-done)
		var err error
		switch sp.Kind {
		case KindRaw:
			err = s.gen.GenerateUint32(ubuf[:n])
		case KindUniform:
			err = s.gen.GenerateUniform(fbuf[:n])
		case KindNormal:
			err = s.gen.GenerateNormal(fbuf[:n], sp.Mean, sp.StdDev)
		case KindLogNormal:
			err = s.gen.GenerateLogNormal(fbuf[:n], sp.Mean, sp.StdDev)
		case KindPoisson:
			err = s.gen.GeneratePoisson(ubuf[:n], sp.Lambda)
		}
		if err != nil {
			return nil, 0, err
		}
		if err := s.gen.Wait(); err != nil {
			return nil, 0, err
		}

		if ubuf != nil {
			rep.CollectUints(ubuf[:n])
			if s.rec != nil {
				if err := s.rec.RecordUints(ubuf[:n]); err != nil {
					return nil, 0, err
				}
			}
		} else {
			rep.Collect(fbuf[:n])
			if s.rec != nil {
				if err := s.rec.RecordFloats(fbuf[:n]); err != nil {
					return nil, 0, err
				}
			}
		}

		done += n
		bar.Add(n)
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	rep.Done()

	return rep, used, nil
}

// simHistogram 依分布挑合理的分桶；raw 值域太大，不分桶。
func simHistogram(sp SimSpec) *stats.Histogram {
	switch sp.Kind {
	case KindUniform:
		return stats.UniformDeciles()
	case KindNormal:
		return spanHistogram(sp.Mean-4*sp.StdDev, sp.Mean+4*sp.StdDev, 16)
	case KindLogNormal:
		// 對數常態右尾長，以中位數 e^μ 為中心往右放寬
		med := math.Exp(sp.Mean)
		return spanHistogram(0, med*8, 16)
	case KindPoisson:
		hi := sp.Lambda + 6*math.Sqrt(sp.Lambda) + 1
		return spanHistogram(0, hi, 16)
	default:
		return nil
	}
}

func spanHistogram(lo, hi float64, buckets int) *stats.Histogram {
	edges := make([]float64, buckets+1)
	step := (hi - lo) / float64(buckets)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	return stats.NewHistogram(edges)
}
