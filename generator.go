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
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/sdk/dist"
)

// Config 為產生器的建構設定。零值可用：全部欄位取預設。
type Config struct {
	// Seed 為 64-bit 種子；0 會被換成 DefaultSeed。
	Seed uint64
	// Offset 讓整個池整體前移 offset 步後才開始輸出。
	Offset uint64
	// Lanes 為池容量（線道數）；<= 0 取 DefaultLanes。
	Lanes int
	// Workers 為每次協定啟動時的平行度；<= 0 取 GOMAXPROCS。
	// worker 數只影響速度，不影響任何一顆輸出（見 kernel.go）。
	Workers int
	// QueueDepth 為提交佇列深度；<= 0 取預設。
	QueueDepth int
	// Factory 為每線道引擎工廠；nil 取 core.Default()。
	Factory core.Factory
}

// Generator 是單一 MRG32k3a 產生器實例：引擎池 + 提交佇列 + Poisson 快取
// 的唯一擁有者。
//
// 併發語意：
//   - 控制面（SetSeed / SetOffset / Reset / Generate* 的排程部分）假設
//     單一呼叫執行緒；這與「同一池不可被兩個重疊的產生呼叫併發變動」的
//     合約一致。
//   - 資料面（池內線道、輸出緩衝）只被佇列 goroutine 觸碰，
//     依進佇順序序列化。
//   - 產生呼叫排入即返回；要讀輸出緩衝前先 Wait()。
type Generator struct {
	seed    uint64
	offset  uint64
	workers int
	factory core.Factory

	pool    *EnginePool
	queue   *LaunchQueue
	poisson dist.PoissonManager

	destroyOnce sync.Once
	destroyed   atomic.Bool
}

// NewGenerator 建構產生器並保留引擎池空間。
//
// 池配置失敗（AllocationFailure）會中止建構整個物件——呼叫端拿到的
// 要嘛是可用的產生器，要嘛是錯誤，沒有半殘狀態。
// 池此時尚未初始化：初始化協定等第一次產生呼叫前才跑（懶初始化）。
func NewGenerator(cfg Config) (*Generator, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	lanes := cfg.Lanes
	if lanes <= 0 {
		lanes = DefaultLanes
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	factory := cfg.Factory
	if factory == nil {
		factory = core.Default()
	}

	pool, err := allocatePool(lanes)
	if err != nil {
		return nil, err
	}

	return &Generator{
		seed:    seed,
		offset:  cfg.Offset,
		workers: workers,
		factory: factory,
		pool:    pool,
		queue:   NewLaunchQueue(cfg.QueueDepth),
	}, nil
}

// Seed 回傳目前種子。
func (g *Generator) Seed() uint64 { return g.seed }

// Offset 回傳目前位移。
func (g *Generator) Offset() uint64 { return g.offset }

// Lanes 回傳池容量。
func (g *Generator) Lanes() int { return g.pool.Capacity() }

// SetSeed 更換種子並使池失效。seed 給 0 一律換成 DefaultSeed。
// 不重配置、不重算——初始化留到下一次產生呼叫前。
func (g *Generator) SetSeed(seed uint64) {
	if seed == 0 {
		seed = DefaultSeed
	}
	g.seed = seed
	g.pool.invalidate()
}

// SetOffset 更換位移並使池失效。
func (g *Generator) SetOffset(offset uint64) {
	g.offset = offset
	g.pool.invalidate()
}

// Reset 使池失效但不動 seed/offset：下一次產生會從該世代的開頭重來。
func (g *Generator) Reset() {
	g.pool.invalidate()
}

// Wait 阻塞直到所有已排入的協定執行完。讀輸出緩衝之前呼叫。
func (g *Generator) Wait() error {
	return g.queue.Wait()
}

// Destroy 釋放池與佇列。會先 drain 佇列再釋放空間；可重複呼叫。
func (g *Generator) Destroy() {
	g.destroyOnce.Do(func() {
		g.destroyed.Store(true)
		g.queue.Close()
		g.pool.release()
	})
}

// ensureInitialized 為懶初始化入口：池就緒就是 no-op；
// 否則把初始化協定排入佇列並在排程成功後立旗。
//
// seed/offset 在「排入當下」快照進工作閉包：排入之後呼叫 SetSeed
// 只會影響下一個世代，不會跟已排入的初始化賽跑。
func (g *Generator) ensureInitialized() error {
	if g.destroyed.Load() || g.pool.released() {
		return errs.NewLaunch("generator destroyed")
	}
	if g.pool.initialized {
		return nil
	}

	p := g.pool
	f := g.factory
	seed, offset, workers := g.seed, g.offset, g.workers
	if err := g.queue.Launch(func() {
		p.initLanes(f, seed, offset, workers)
	}); err != nil {
		return err
	}
	g.pool.initialized = true
	return nil
}

// launchSweep 統一的排程入口：空輸出直接成功；失敗時（佇列關閉等）
// 不寫任何輸出、不動池狀態。
func (g *Generator) launchSweep(fn func()) error {
	if err := g.ensureInitialized(); err != nil {
		return err
	}
	return g.queue.Launch(fn)
}

// --------------------------------------
// 泛型產生入口
// --------------------------------------

// Generate 以 1:1 協定產生 len(out) 顆變量：一顆原始輸出經 d 轉換填一格。
//
// 排入成功即返回；輸出位置 k 的值由線道 k mod stride 決定（stride = 池容量），
// 給定 (seed, offset, 池容量, d) 與先前的消耗量，結果完全決定。
func Generate[T any](g *Generator, out []T, d dist.Unary[T]) error {
	if len(out) == 0 {
		return nil
	}
	lanes, workers := g.pool.lanes, g.workers
	return g.launchSweep(func() {
		sweepUnary(lanes, out, d, workers)
	})
}

// GeneratePaired 以 2:1 配對協定產生 len(out) 顆變量：兩顆原始輸出經 d
// 轉成一對結果填兩格；n 為奇數時的尾巴處理見 kernel.go。
func GeneratePaired[T any](g *Generator, out []T, d dist.Paired[T]) error {
	if len(out) == 0 {
		return nil
	}
	lanes, workers := g.pool.lanes, g.workers
	return g.launchSweep(func() {
		sweepPaired(lanes, out, d, workers)
	})
}

// --------------------------------------
// 具型別的便利入口
// --------------------------------------

// GenerateUint32 產生引擎原始輸出序列，範圍 [1, core.M1]。
func (g *Generator) GenerateUint32(out []uint32) error {
	return Generate(g, out, dist.RawUint32{})
}

// GenerateUniform 產生 (0,1) 均勻分布的 float64。
func (g *Generator) GenerateUniform(out []float64) error {
	return Generate(g, out, dist.Uniform[float64]{})
}

// GenerateUniformF32 產生 (0,1) 均勻分布的 float32。
func (g *Generator) GenerateUniformF32(out []float32) error {
	return Generate(g, out, dist.Uniform[float32]{})
}

// GenerateNormal 產生常態分布 N(mean, stddev^2) 的 float64。
func (g *Generator) GenerateNormal(out []float64, mean, stddev float64) error {
	return GeneratePaired(g, out, dist.Normal[float64]{Mean: mean, StdDev: stddev})
}

// GenerateNormalF32 產生常態分布的 float32。
func (g *Generator) GenerateNormalF32(out []float32, mean, stddev float32) error {
	return GeneratePaired(g, out, dist.Normal[float32]{Mean: mean, StdDev: stddev})
}

// GenerateLogNormal 產生對數常態分布的 float64（mean/stddev 為底層常態參數）。
func (g *Generator) GenerateLogNormal(out []float64, mean, stddev float64) error {
	return GeneratePaired(g, out, dist.LogNormal[float64]{Mean: mean, StdDev: stddev})
}

// GeneratePoisson 產生 Poisson(lambda) 的計數值。
//
// 先讓單格快取對齊 lambda：同 lambda 連打不重建表；lambda 超界回傳
// InvalidParameter 且「不排任何工作」——輸出緩衝與池狀態原封不動。
func (g *Generator) GeneratePoisson(out []uint32, lambda float64) error {
	if err := g.poisson.SetLambda(lambda); err != nil {
		return err
	}
	return Generate(g, out, g.poisson.Functor())
}

// PoissonRebuilds 回傳 Poisson 快取的累計建表次數（觀測/測試用）。
func (g *Generator) PoissonRebuilds() int {
	return g.poisson.Rebuilds()
}
