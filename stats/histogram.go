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
	"fmt"
	"sort"
)

// Histogram 以固定邊界把觀測值分桶，用於分布落點統計。
//
// edges 必須嚴格遞增；len(edges)+1 個桶：
//
//	(-inf, e0), [e0, e1), ..., [e(k-1), +inf)
//
// 熱路徑只做一次二分搜尋 + 一次計數，整理（頻率、標籤）留給 Report()。
type Histogram struct {
	edges  []float64
	counts []int
}

// NewHistogram 以給定邊界建桶。邊界不遞增會 panic（建桶是組裝期的事，
// 組裝期錯誤直接炸出來比默默給錯統計好）。
func NewHistogram(edges []float64) *Histogram {
	if len(edges) == 0 {
		panic("histogram: empty edges")
	}
	if !sort.Float64sAreSorted(edges) {
		panic("histogram: edges must be ascending")
	}
	return &Histogram{
		edges:  edges,
		counts: make([]int, len(edges)+1),
	}
}

// UniformDeciles 為 (0,1) 均勻變量準備的十等分桶。
func UniformDeciles() *Histogram {
	edges := make([]float64, 11)
	for i := range edges {
		edges[i] = float64(i) / 10.0
	}
	return NewHistogram(edges)
}

// Observe 將觀測值落桶。
//
// 區間是半開的 [e, next)：落在邊界上的值屬於右側桶，
// 所以要找「第一個大於 v 的邊界」（upper bound），
// 不能用 SearchFloat64s（lower bound 會把邊界值塞進左側桶）。
func (h *Histogram) Observe(v float64) {
	h.counts[sort.Search(len(h.edges), func(i int) bool { return h.edges[i] > v })]++
}

// Counts 回傳各桶計數（唯讀視角，呼叫端不可修改）。
func (h *Histogram) Counts() []int {
	return h.counts
}

// Labels 回傳各桶的區間標籤。
func (h *Histogram) Labels() []string {
	labels := make([]string, len(h.counts))
	labels[0] = fmt.Sprintf("(-inf,%g)", h.edges[0])
	for i := 1; i < len(h.edges); i++ {
		labels[i] = fmt.Sprintf("[%g,%g)", h.edges[i-1], h.edges[i])
	}
	labels[len(h.edges)] = fmt.Sprintf("[%g,+inf)", h.edges[len(h.edges)-1])
	return labels
}

// Report 將計數整理成 DistReport（含相對頻率）。
func (h *Histogram) Report() *DistReport {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	freqs := make([]float64, len(h.counts))
	if total > 0 {
		for i, c := range h.counts {
			freqs[i] = float64(c) / float64(total)
		}
	}
	counts := make([]int, len(h.counts))
	copy(counts, h.counts)
	return &DistReport{
		Labels: h.Labels(),
		Counts: counts,
		Freqs:  freqs,
	}
}
