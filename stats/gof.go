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

package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zintix-labs/randlab/errs"
)

// GofResult 為卡方適合度檢定的結果。
type GofResult struct {
	Chi2   float64 `json:"Chi2"`
	DF     int     `json:"DF"`
	PValue float64 `json:"PValue"`
}

// ChiSquareGof 對直方圖計數做卡方適合度檢定。
//
// probs 為各桶的理論機率（與桶一一對應，總和應為 1）；期望數過小
// （< 5）的桶會讓卡方近似失真，這裡直接略過該桶並相應扣自由度。
//
// p-value 很小（例如 < 0.01）代表觀測分布與理論分布不合。
// 產生器正確時 p-value 應大致均勻分布——單次檢定偶爾偏小是正常的。
func ChiSquareGof(counts []int, probs []float64) (GofResult, error) {
	if len(counts) != len(probs) {
		return GofResult{}, errs.NewWarn("gof: counts/probs length mismatch")
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return GofResult{}, errs.NewWarn("gof: no observations")
	}

	chi2 := 0.0
	used := 0
	for i, c := range counts {
		expected := probs[i] * float64(total)
		if expected < 5 {
			continue
		}
		diff := float64(c) - expected
		chi2 += diff * diff / expected
		used++
	}
	if used < 2 {
		return GofResult{}, errs.NewWarn("gof: not enough populated buckets")
	}

	df := used - 1
	p := distuv.ChiSquared{K: float64(df)}.Survival(chi2)
	return GofResult{Chi2: chi2, DF: df, PValue: p}, nil
}
