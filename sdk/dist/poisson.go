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

package dist

import (
	"fmt"
	"math"
	"sort"

	"github.com/zintix-labs/randlab/errs"
)

// MaxLambda 為 Poisson 建表支援的 lambda 上限。
//
// 超過這個量級 CDF 表會變得又長又平，查表法已經不是正確工具
// （該走常態近似），因此直接視為參數超界。
const MaxLambda = 4000.0

// cdfTailCut 決定查找表涵蓋到右尾多少機率質量為止。
const cdfTailCut = 1e-12

// PoissonTable 為單一 lambda 的累積分布查找表。
//
// 查表抽樣是「空間換時間」：建表 O(表長)，之後每顆樣本一次二分搜尋。
// 表只涵蓋 [base, base+len) 這段有效支撐；兩側尾巴的質量小於 cdfTailCut，
// 抽中時夾到最近端點。
//
//   - base: 表的第一格對應的 k 值（lambda 大時左尾整段跳過）
//   - cdf:  cdf[i] = P(X <= base+i)，嚴格遞增
type PoissonTable struct {
	Lambda float64
	base   int
	cdf    []float64
}

// BuildPoissonTable 為指定 lambda 建表。
//
// lambda 必須是 (0, MaxLambda] 內的有限值，否則回傳 InvalidParam。
//
// 建表流程：
//  1. 取左起點 base = max(0, lambda - 12*sqrt(lambda))，左尾被跳過的質量可忽略。
//  2. 以 log-gamma 算出起點的 log-pmf（直接連乘在大 lambda 時會 underflow）。
//  3. 用遞推 p[k+1] = p[k] * lambda / (k+1) 往右累積，直到右尾小於 cdfTailCut。
func BuildPoissonTable(lambda float64) (*PoissonTable, error) {
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda <= 0 {
		return nil, errs.NewInvalidParam("poisson lambda must be a finite value > 0")
	}
	if lambda > MaxLambda {
		return nil, errs.NewInvalidParam(fmt.Sprintf("poisson lambda %g exceeds limit %g", lambda, MaxLambda))
	}

	base := 0
	if lo := math.Floor(lambda - 12.0*math.Sqrt(lambda)); lo > 0 {
		base = int(lo)
	}

	// log-pmf(base) = base*ln(lambda) - lambda - ln(base!)
	lg, _ := math.Lgamma(float64(base) + 1)
	logp := float64(base)*math.Log(lambda) - lambda - lg
	p := math.Exp(logp)

	// 表長上限：支撐寬度約 24*sqrt(lambda)，再加常數緩衝
	capHint := int(24.0*math.Sqrt(lambda)) + 32

	cdf := make([]float64, 0, capHint)
	acc := 0.0
	k := base
	for {
		acc += p
		cdf = append(cdf, acc)
		if acc >= 1.0-cdfTailCut {
			break
		}
		k++
		p *= lambda / float64(k)
		if p == 0 && acc < 1.0-cdfTailCut {
			// 右尾已小到浮點歸零；表到此為止，殘餘質量夾到最後一格
			break
		}
	}

	return &PoissonTable{Lambda: lambda, base: base, cdf: cdf}, nil
}

// Len 回傳表長（測試/觀測用）。
func (t *PoissonTable) Len() int {
	return len(t.cdf)
}

// Poisson 為查表式 Poisson 轉換子（1:1）。
//
// 唯讀共享一張 PoissonTable：掃描協定會把同一個值複製進多個 worker，
// 表本身在產生期間絕不可變動（由 PoissonManager 保證）。
type Poisson struct {
	table *PoissonTable
}

// NewPoisson 以既有的表建立轉換子。
func NewPoisson(t *PoissonTable) Poisson {
	return Poisson{table: t}
}

func (d Poisson) Transform(raw uint32) uint32 {
	u := float64(raw) * invM1p1
	i := sort.SearchFloat64s(d.table.cdf, u)
	if i >= len(d.table.cdf) {
		i = len(d.table.cdf) - 1
	}
	return uint32(d.table.base + i)
}
