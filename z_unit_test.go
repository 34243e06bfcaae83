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
	"bytes"
	"slices"
	"testing"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/recorder"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/sdk/dist"
)

func newTestGen(t *testing.T, cfg Config) *Generator {
	t.Helper()
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(g.Destroy)
	return g
}

func genUniform(t *testing.T, g *Generator, n int) []float64 {
	t.Helper()
	out := make([]float64, n)
	if err := g.GenerateUniform(out); err != nil {
		t.Fatal(err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestGeneratorDeterminism(t *testing.T) {
	// 相同 (seed, offset, 池容量, 呼叫序列) 的兩個獨立實例必須逐位元一致
	g1 := newTestGen(t, Config{Seed: 12345, Lanes: 64})
	g2 := newTestGen(t, Config{Seed: 12345, Lanes: 64})

	a := genUniform(t, g1, 1000)
	b := genUniform(t, g2, 1000)
	if !slices.Equal(a, b) {
		t.Fatal("two identical generators diverged")
	}
}

func TestWorkerCountDoesNotChangeOutput(t *testing.T) {
	g1 := newTestGen(t, Config{Seed: 7, Lanes: 32, Workers: 1})
	g2 := newTestGen(t, Config{Seed: 7, Lanes: 32, Workers: 8})

	if !slices.Equal(genUniform(t, g1, 500), genUniform(t, g2, 500)) {
		t.Fatal("worker count changed the output stream")
	}
}

func TestContinuationNotRepetition(t *testing.T) {
	// 一口氣拿 n 顆 vs 拆成 k + (n-k) 兩次拿，串接結果必須一致（所有 k）
	const n = 40
	want := genUniform(t, newTestGen(t, Config{Seed: 12345, Lanes: 4}), n)

	for k := 0; k <= n; k++ {
		g := newTestGen(t, Config{Seed: 12345, Lanes: 4})
		got := append(genUniform(t, g, k), genUniform(t, g, n-k)...)
		if !slices.Equal(got, want) {
			t.Fatalf("split %d+%d diverges from one-shot", k, n-k)
		}
	}
}

func TestExampleScenarioUniform(t *testing.T) {
	// seed=12345, offset=0, 4 線道：n=10 一次拿 vs 4+6 兩次拿
	one := genUniform(t, newTestGen(t, Config{Seed: 12345, Lanes: 4}), 10)

	g := newTestGen(t, Config{Seed: 12345, Lanes: 4})
	split := append(genUniform(t, g, 4), genUniform(t, g, 6)...)
	if !slices.Equal(one, split) {
		t.Fatal("4+6 split diverges from one-shot n=10")
	}
}

func TestReseedInvalidation(t *testing.T) {
	g := newTestGen(t, Config{Seed: 12345, Lanes: 8})
	first := genUniform(t, g, 100)

	// 換 seed：新序列不得重現舊輸出，也不得沿用殘留線道狀態
	g.SetSeed(54321)
	second := genUniform(t, g, 100)
	if slices.Equal(first, second) {
		t.Fatal("reseed reproduced the old stream")
	}

	// 換回原 seed：池重新初始化，從世代開頭重來 → 必須等於第一批
	g.SetSeed(12345)
	third := genUniform(t, g, 100)
	if !slices.Equal(first, third) {
		t.Fatal("re-init with the original seed did not restart the epoch")
	}
}

func TestOffsetInvalidation(t *testing.T) {
	g := newTestGen(t, Config{Seed: 12345, Lanes: 8})
	first := genUniform(t, g, 50)

	g.SetOffset(1)
	shifted := genUniform(t, g, 50)
	if slices.Equal(first, shifted) {
		t.Fatal("offset change did not move the stream")
	}
}

func TestResetRestartsEpoch(t *testing.T) {
	g := newTestGen(t, Config{Seed: 12345, Lanes: 8})
	first := genUniform(t, g, 64)

	g.Reset()
	again := genUniform(t, g, 64)
	if !slices.Equal(first, again) {
		t.Fatal("reset did not restart from the epoch start")
	}
}

func TestSeedZeroRemapped(t *testing.T) {
	g0 := newTestGen(t, Config{Seed: 0, Lanes: 8})
	gd := newTestGen(t, Config{Seed: DefaultSeed, Lanes: 8})
	if !slices.Equal(genUniform(t, g0, 64), genUniform(t, gd, 64)) {
		t.Fatal("seed 0 was not remapped to the default seed")
	}

	g := newTestGen(t, Config{Seed: 99, Lanes: 8})
	g.SetSeed(0)
	if g.Seed() != DefaultSeed {
		t.Fatal("SetSeed(0) was not remapped to the default seed")
	}
}

// expectedPairedOutput 以裸引擎手算配對掃描的期望輸出。
func expectedPairedOutput(seed uint64, lanes, n int, d dist.Paired[float64]) []float64 {
	engines := make([]core.MRG32k3a, lanes)
	for i := range engines {
		engines[i] = core.NewMRG32k3a(seed, uint32(i), 0)
	}
	out := make([]float64, n)
	half := n / 2
	for lane := 0; lane < lanes; lane++ {
		for idx := lane; idx < half; idx += lanes {
			a, b := d.TransformPair(engines[lane].Next(), engines[lane].Next())
			out[2*idx], out[2*idx+1] = a, b
		}
		if lane == 0 && n%2 == 1 {
			a, _ := d.TransformPair(engines[0].Next(), engines[0].Next())
			out[n-1] = a
		}
	}
	return out
}

func TestPairedOddTail(t *testing.T) {
	// n=5、4 線道：位置 0-3 來自配對掃描，位置 4 必須是線道 0 的
	// 額外一次成對取值，只取第一分量
	d := dist.Normal[float64]{Mean: 0, StdDev: 1}
	g := newTestGen(t, Config{Seed: 12345, Lanes: 4})

	out := make([]float64, 5)
	if err := g.GenerateNormal(out, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	want := expectedPairedOutput(12345, 4, 5, d)
	if !slices.Equal(out, want) {
		t.Fatalf("paired sweep mismatch:\n got %v\nwant %v", out, want)
	}
}

func TestPairedEvenNoExtraDraw(t *testing.T) {
	// 偶數 n 不得有尾巴取值：後續的 1:1 掃描必須接在「恰好兩顆」之後
	g := newTestGen(t, Config{Seed: 12345, Lanes: 4})

	pair := make([]float64, 8) // 每線道恰好消耗 2 顆
	if err := g.GenerateNormal(pair, 0, 1); err != nil {
		t.Fatal(err)
	}
	follow := genUniform(t, g, 4)

	// 手算：每線道先丟 2 顆，再取 1 顆作為 uniform
	var u dist.Uniform[float64]
	for lane := 0; lane < 4; lane++ {
		e := core.NewMRG32k3a(12345, uint32(lane), 0)
		e.Next()
		e.Next()
		if want := u.Transform(e.Next()); follow[lane] != want {
			t.Fatalf("lane %d consumed a draw it should not have", lane)
		}
	}
}

func TestPairedTailConsumedByLaneZero(t *testing.T) {
	// 奇數 n：線道 0 多消耗一次成對取值（兩顆），其他線道不受影響
	g := newTestGen(t, Config{Seed: 12345, Lanes: 4})

	odd := make([]float64, 5) // half=2: lane0/lane1 各 2 顆，尾巴再吃 lane0 兩顆
	if err := g.GenerateNormal(odd, 0, 1); err != nil {
		t.Fatal(err)
	}
	follow := genUniform(t, g, 4)

	var u dist.Uniform[float64]
	consumed := []int{4, 2, 0, 0} // 主掃描 + 尾巴後，各線道已用掉的顆數
	for lane := 0; lane < 4; lane++ {
		e := core.NewMRG32k3a(12345, uint32(lane), 0)
		for i := 0; i < consumed[lane]; i++ {
			e.Next()
		}
		if want := u.Transform(e.Next()); follow[lane] != want {
			t.Fatalf("lane %d draw accounting wrong after odd tail", lane)
		}
	}
}

func TestPoolSmallerThanOutput(t *testing.T) {
	// 池比輸出小：跨步掃描多跑幾圈；位置 k 由線道 k mod stride 的
	// 第 (k/stride + 1) 顆輸出決定
	const lanes = 4
	g := newTestGen(t, Config{Seed: 12345, Lanes: lanes})
	out := genUniform(t, g, 19)

	var u dist.Uniform[float64]
	for lane := 0; lane < lanes; lane++ {
		e := core.NewMRG32k3a(12345, uint32(lane), 0)
		for idx := lane; idx < len(out); idx += lanes {
			if want := u.Transform(e.Next()); out[idx] != want {
				t.Fatalf("position %d not from lane %d's next draw", idx, lane)
			}
		}
	}
}

func TestPoissonCacheAcrossGenerate(t *testing.T) {
	g := newTestGen(t, Config{Seed: 12345, Lanes: 16})
	out := make([]uint32, 100)

	if err := g.GeneratePoisson(out, 10); err != nil {
		t.Fatal(err)
	}
	if err := g.GeneratePoisson(out, 10); err != nil {
		t.Fatal(err)
	}
	if got := g.PoissonRebuilds(); got != 1 {
		t.Fatalf("same lambda must build the table once, got %d", got)
	}

	if err := g.GeneratePoisson(out, 25); err != nil {
		t.Fatal(err)
	}
	if got := g.PoissonRebuilds(); got != 2 {
		t.Fatalf("lambda change must rebuild exactly once, got %d", got)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestPoissonInvalidLambdaLaunchesNothing(t *testing.T) {
	g := newTestGen(t, Config{Seed: 12345, Lanes: 16})
	out := make([]uint32, 8)

	before := g.queue.Launched()
	err := g.GeneratePoisson(out, -3)
	if err == nil {
		t.Fatal("expected invalid lambda error")
	}
	if errs.StatusOf(err) != errs.StatusInvalidParam {
		t.Fatalf("expected invalid_param, got %v", err)
	}
	if g.queue.Launched() != before {
		t.Fatal("failed set_lambda must not launch any work")
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("failed call wrote into the output buffer")
		}
	}
}

func TestAllocationFailure(t *testing.T) {
	_, err := NewGenerator(Config{Lanes: maxPoolLanes + 1})
	if err == nil {
		t.Fatal("expected allocation failure")
	}
	if errs.StatusOf(err) != errs.StatusAllocation {
		t.Fatalf("expected allocation_failed, got %v", err)
	}
}

func TestDestroyIdempotent(t *testing.T) {
	g, err := NewGenerator(Config{Lanes: 8})
	if err != nil {
		t.Fatal(err)
	}
	g.Destroy()
	g.Destroy() // 再拆一次不能炸

	out := make([]float64, 4)
	err = g.GenerateUniform(out)
	if err == nil {
		t.Fatal("expected launch failure after destroy")
	}
	if errs.StatusOf(err) != errs.StatusLaunch {
		t.Fatalf("expected launch_failure, got %v", err)
	}
}

func TestLaunchOrderAcrossProtocols(t *testing.T) {
	// 同一佇列上先後排入的協定必須依序生效：
	// uniform → normal → uniform，三段輸出各自接續同一池狀態
	g := newTestGen(t, Config{Seed: 12345, Lanes: 4})

	u1 := make([]float64, 8)
	n1 := make([]float64, 8)
	u2 := make([]float64, 8)
	if err := g.GenerateUniform(u1); err != nil {
		t.Fatal(err)
	}
	if err := g.GenerateNormal(n1, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := g.GenerateUniform(u2); err != nil {
		t.Fatal(err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	// 手算同樣的消耗序列
	var u dist.Uniform[float64]
	d := dist.Normal[float64]{Mean: 0, StdDev: 1}
	for lane := 0; lane < 4; lane++ {
		e := core.NewMRG32k3a(12345, uint32(lane), 0)
		for idx := lane; idx < 8; idx += 4 {
			if u1[idx] != u.Transform(e.Next()) {
				t.Fatalf("phase u1 lane %d wrong", lane)
			}
		}
		for idx := lane; idx < 4; idx += 4 {
			a, b := d.TransformPair(e.Next(), e.Next())
			if n1[2*idx] != a || n1[2*idx+1] != b {
				t.Fatalf("phase n1 lane %d wrong", lane)
			}
		}
		for idx := lane; idx < 8; idx += 4 {
			if u2[idx] != u.Transform(e.Next()) {
				t.Fatalf("phase u2 lane %d wrong", lane)
			}
		}
	}
}

func TestGenerateEmptyBuffer(t *testing.T) {
	g := newTestGen(t, Config{Seed: 1, Lanes: 4})
	if err := g.GenerateUniform(nil); err != nil {
		t.Fatalf("empty output must be a no-op success, got %v", err)
	}
}

func TestGenerateUint32Raw(t *testing.T) {
	g := newTestGen(t, Config{Seed: 12345, Lanes: 4})
	out := make([]uint32, 16)
	if err := g.GenerateUint32(out); err != nil {
		t.Fatal(err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for lane := 0; lane < 4; lane++ {
		e := core.NewMRG32k3a(12345, uint32(lane), 0)
		for idx := lane; idx < 16; idx += 4 {
			if out[idx] != e.Next() {
				t.Fatalf("raw output mismatch at %d", idx)
			}
		}
	}
}

func TestSimulatorUniformMatchesGenerator(t *testing.T) {
	g := newTestGen(t, Config{Seed: 77, Lanes: 4})
	s := NewSimulator(g)
	rep, _, err := s.Sim(SimSpec{Kind: KindUniform}, 100, 32, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Summary.Count != 100 {
		t.Fatalf("count got %d want 100", rep.Summary.Count)
	}

	// 批次切割不得影響序列：同設定一次拉 100 個做對照
	ref := newTestGen(t, Config{Seed: 77, Lanes: 4})
	want := genUniform(t, ref, 100)
	sum := 0.0
	for _, v := range want {
		sum += v
	}
	wantMean := sum / 100
	if diff := rep.Summary.Mean - wantMean; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("mean got %.15f want %.15f", rep.Summary.Mean, wantMean)
	}
	if rep.Dist == nil {
		t.Fatalf("uniform sim should carry a decile distribution")
	}
}

func TestSimulatorRecordsDraws(t *testing.T) {
	g := newTestGen(t, Config{Seed: 9, Lanes: 4})
	s := NewSimulator(g)

	var buf bytes.Buffer
	rec, err := recorder.NewDrawRecorder(&buf)
	if err != nil {
		t.Fatal(err)
	}
	s.Attach(rec)

	if _, _, err := s.Sim(SimSpec{Kind: KindRaw}, 50, 16, false); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if rec.Draws() != 50 {
		t.Fatalf("recorded draws got %d want 50", rec.Draws())
	}

	total := 0
	err = recorder.Replay(&buf, func(b recorder.Batch) error {
		if b.Tag != recorder.TagUint32 {
			t.Fatalf("tag got %d want uint32", b.Tag)
		}
		total += len(b.Uints)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 50 {
		t.Fatalf("replayed draws got %d want 50", total)
	}
}

func TestSimulatorRejectsBadSpec(t *testing.T) {
	g := newTestGen(t, Config{Seed: 1, Lanes: 2})
	s := NewSimulator(g)

	cases := []SimSpec{
		{Kind: "weibull"},
		{Kind: KindNormal, StdDev: 0},
		{Kind: KindPoisson, Lambda: 0},
	}
	for _, sp := range cases {
		_, _, err := s.Sim(sp, 10, 0, false)
		if errs.StatusOf(err) != errs.StatusInvalidParam {
			t.Fatalf("spec %+v: got %v, want invalid param", sp, err)
		}
	}
	if _, _, err := s.Sim(SimSpec{Kind: KindUniform}, 0, 0, false); errs.StatusOf(err) != errs.StatusInvalidParam {
		t.Fatalf("total=0 accepted")
	}
}
