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
	"sync"

	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/sdk/dist"
)

// 掃描協定（kernel）：引擎池對輸出緩衝的跨步掃描。
//
// 決定性的關鍵：輸出位置 k 一定由線道 k mod stride 的第 (k/stride + 1) 顆
// 後續輸出填入，stride 恆等於線道總數——與 worker goroutine 數無關。
// worker 只是把「線道區間」切開同時跑，每個線道自始至終只屬於一個 worker，
// 所以調大調小 workers 不會改變任何一顆輸出。

// sweepUnary 為 1:1 掃描：一顆原始輸出填一格。
//
// 每線道流程：載入狀態副本 → 沿 lane, lane+stride, ... 逐格「取值、轉換、
// 寫入」→ 掃完把（前進過的）狀態寫回原位。寫回就是續流合約：
// 下一次掃描從這裡繼續，不重複、不跳過。
func sweepUnary[T any](lanes []core.MRG32k3a, out []T, d dist.Unary[T], workers int) {
	stride := len(lanes)
	parallelLanes(stride, workers, func(lo, hi int) {
		for lane := lo; lane < hi; lane++ {
			e := lanes[lane]
			for idx := lane; idx < len(out); idx += stride {
				out[idx] = d.Transform(e.Next())
			}
			lanes[lane] = e
		}
	})
}

// sweepPaired 為 2:1 配對掃描：兩顆原始輸出填兩格。
//
// 掃描對象是 ⌊n/2⌋ 個「成對位置」，配對位置 idx 對應輸出格
// (2*idx, 2*idx+1)。
//
// 奇數尾巴：n 為奇數時，主掃描結束後由線道 0（固定的決定性選擇，
// 不能隨機挑）多消耗一次成對取值，只把第一個分量寫進最後一格，
// 第二個分量丟棄。丟的是第二個、不是第一個——順序屬於輸出合約的一部分。
// 這顆多消耗的取值同樣會寫回線道 0 的狀態。
func sweepPaired[T any](lanes []core.MRG32k3a, out []T, d dist.Paired[T], workers int) {
	stride := len(lanes)
	half := len(out) / 2
	odd := len(out)%2 == 1

	parallelLanes(stride, workers, func(lo, hi int) {
		for lane := lo; lane < hi; lane++ {
			e := lanes[lane]
			for idx := lane; idx < half; idx += stride {
				a, b := d.TransformPair(e.Next(), e.Next())
				out[2*idx] = a
				out[2*idx+1] = b
			}
			if odd && lane == 0 {
				a, _ := d.TransformPair(e.Next(), e.Next())
				out[len(out)-1] = a
			}
			lanes[lane] = e
		}
	})
}

// parallelLanes 把 [0, n) 的線道切成至多 workers 段同時執行。
func parallelLanes(n, workers int, fn func(lo, hi int)) {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
