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

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/sdk/core"
)

// maxPoolLanes 為池容量上限（約 1.5GB 的引擎狀態）。
// 超過視為配置失敗：與其讓 runtime 在 make 時直接 OOM，
// 不如在這裡就擋下並回報 AllocationFailure。
const maxPoolLanes = 1 << 26

// EnginePool 持有固定容量的每線道引擎狀態。
//
// 不變量：initialized 為 true 若且唯若「每個線道的狀態都對應目前的
// (seed, offset)」；任何 seed/offset 變動都必須立刻清掉這個旗標
// （清旗標的人是 Generator，池本身不認識設定）。
//
// 併發語意：lanes 只會被佇列 goroutine 觸碰（初始化協定與掃描協定都
// 經由 LaunchQueue 序列化）；initialized 旗標只由控制執行緒讀寫。
// 這條線劃清楚了，池就不需要任何鎖。
type EnginePool struct {
	lanes       []core.MRG32k3a
	initialized bool
}

// allocatePool 保留 capacity 個線道的狀態空間。
//
// 失敗（容量不合法或超過上限）回傳 AllocationFailure——這對產生器建構
// 是致命的，直接向上傳遞，不重試。
func allocatePool(capacity int) (*EnginePool, error) {
	if capacity < 1 {
		return nil, errs.NewAllocation("engine pool capacity must be >= 1")
	}
	if capacity > maxPoolLanes {
		return nil, errs.NewAllocation("engine pool capacity exceeds limit")
	}
	return &EnginePool{
		lanes: make([]core.MRG32k3a, capacity),
	}, nil
}

// Capacity 回傳線道總數。
func (p *EnginePool) Capacity() int {
	return len(p.lanes)
}

// Initialized 回報池是否對應目前世代（觀測/測試用）。
func (p *EnginePool) Initialized() bool {
	return p.initialized
}

// invalidate 清掉就緒旗標。不做任何重算——初始化是懶的，
// 留到下一次產生呼叫之前。
func (p *EnginePool) invalidate() {
	p.initialized = false
}

// release 釋放狀態空間。teardown 路徑可能重入，必須可重複呼叫。
func (p *EnginePool) release() {
	p.lanes = nil
	p.initialized = false
}

// released 回報池空間是否已被釋放。
func (p *EnginePool) released() bool {
	return p.lanes == nil
}

// initLanes 是初始化協定本體：對每個線道 i 獨立地建構
// Engine(seed, i, offset) 並放到位置 i。
//
// 線道之間零溝通、零順序依賴（embarrassingly parallel），
// 這裡用 WaitGroup 把線道切成 workers 段同時建。
// 每個 (seed, offset) 世代恰好跑一次，成本攤提到該世代的所有產生呼叫。
func (p *EnginePool) initLanes(f core.Factory, seed uint64, offset uint64, workers int) {
	n := len(p.lanes)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
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
			for i := lo; i < hi; i++ {
				p.lanes[i] = f.New(seed, uint32(i), offset)
			}
		}(lo, hi)
	}
	wg.Wait()
}
