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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/zintix-labs/randlab/stats"
)

func TestBatchReportCoreMetrics(t *testing.T) {
	rep := stats.NewBatchReport("uniform", 12345, 0, 4, nil)
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	rep.Collect(values)
	rep.Done()

	s := rep.Summary
	if s.Count != 5 {
		t.Fatalf("count got %d want 5", s.Count)
	}
	if math.Abs(s.Mean-0.3) > 1e-12 {
		t.Fatalf("mean got %.12f want 0.3", s.Mean)
	}

	// 樣本標準差 (n-1)
	var sq float64
	for _, v := range values {
		d := v - 0.3
		sq += d * d
	}
	wantStd := math.Sqrt(sq / 4)
	if math.Abs(s.Std-wantStd) > 1e-12 {
		t.Fatalf("std got %.12f want %.12f", s.Std, wantStd)
	}
	if s.Min != 0.1 || s.Max != 0.5 {
		t.Fatalf("min/max got %g/%g want 0.1/0.5", s.Min, s.Max)
	}
	if s.MeanCI.Lo >= s.Mean || s.MeanCI.Hi <= s.Mean {
		t.Fatalf("CI [%g,%g] does not bracket mean %g", s.MeanCI.Lo, s.MeanCI.Hi, s.Mean)
	}

	rep.Done() // idempotent
	if s.Mean != 0.3 {
		t.Fatalf("mean changed after second Done")
	}
}

func TestBatchReportCollectUints(t *testing.T) {
	rep := stats.NewBatchReport("poisson", 1, 0, 2, nil)
	rep.CollectUints([]uint32{1, 2, 3})
	rep.Done()
	if math.Abs(rep.Summary.Mean-2.0) > 1e-12 {
		t.Fatalf("mean got %g want 2", rep.Summary.Mean)
	}
	if rep.Summary.Min != 1 || rep.Summary.Max != 3 {
		t.Fatalf("min/max got %g/%g", rep.Summary.Min, rep.Summary.Max)
	}
}

func TestHistogramDeciles(t *testing.T) {
	h := stats.UniformDeciles()
	// 每個十等分各丟一個點，外加一個落在下溢桶、一個上溢桶
	for i := 0; i < 10; i++ {
		h.Observe(float64(i)/10.0 + 0.05)
	}
	h.Observe(-0.5)
	h.Observe(1.5)

	dist := h.Report()
	if len(dist.Counts) != 12 {
		t.Fatalf("bucket count got %d want 12", len(dist.Counts))
	}
	if dist.Counts[0] != 1 || dist.Counts[11] != 1 {
		t.Fatalf("overflow buckets got %d/%d want 1/1", dist.Counts[0], dist.Counts[11])
	}
	for i := 1; i <= 10; i++ {
		if dist.Counts[i] != 1 {
			t.Fatalf("bucket %d got %d want 1", i, dist.Counts[i])
		}
	}

	sum := 0.0
	for _, f := range dist.Freqs {
		sum += f
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("freqs sum got %g want 1", sum)
	}
	if len(dist.Labels) != len(dist.Counts) {
		t.Fatalf("labels/counts length mismatch")
	}
}

func TestHistogramEdgeAssignment(t *testing.T) {
	h := stats.NewHistogram([]float64{0, 1, 2})
	// 邊界值落在右側桶（半開區間 [e, next)）
	h.Observe(0)
	h.Observe(1)
	h.Observe(2)
	c := h.Counts()
	if c[0] != 0 {
		t.Fatalf("underflow bucket got %d want 0", c[0])
	}
	if c[1] != 1 || c[2] != 1 || c[3] != 1 {
		t.Fatalf("counts got %v", c)
	}
}

func TestChiSquareGofUniform(t *testing.T) {
	// 完全均勻的計數應得到 chi2=0、p-value=1
	counts := []int{100, 100, 100, 100}
	probs := []float64{0.25, 0.25, 0.25, 0.25}
	res, err := stats.ChiSquareGof(counts, probs)
	if err != nil {
		t.Fatalf("gof error: %v", err)
	}
	if res.Chi2 != 0 {
		t.Fatalf("chi2 got %g want 0", res.Chi2)
	}
	if res.DF != 3 {
		t.Fatalf("df got %d want 3", res.DF)
	}
	if math.Abs(res.PValue-1.0) > 1e-9 {
		t.Fatalf("p-value got %g want 1", res.PValue)
	}

	// 嚴重偏斜則 p-value 應非常小
	res2, err := stats.ChiSquareGof([]int{400, 0, 0, 0}, probs)
	if err != nil {
		t.Fatalf("gof error: %v", err)
	}
	if res2.PValue > 1e-6 {
		t.Fatalf("skewed p-value got %g, expected near zero", res2.PValue)
	}
}

func TestChiSquareGofRejectsBadInput(t *testing.T) {
	if _, err := stats.ChiSquareGof([]int{1, 2}, []float64{0.5}); err == nil {
		t.Fatalf("length mismatch accepted")
	}
	if _, err := stats.ChiSquareGof([]int{0, 0}, []float64{0.5, 0.5}); err == nil {
		t.Fatalf("empty observations accepted")
	}
}

func TestBatchReportRenders(t *testing.T) {
	h := stats.UniformDeciles()
	rep := stats.NewBatchReport("uniform", 7, 0, 8, h)
	rep.Collect([]float64{0.15, 0.25, 0.35})

	var jbuf bytes.Buffer
	if err := rep.WriteWith(&jbuf, &stats.JsonBatchReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jbuf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output not valid: %v", err)
	}
	if _, ok := decoded["Summary"]; !ok {
		t.Fatalf("json output missing Summary")
	}
	if _, ok := decoded["Dist"]; !ok {
		t.Fatalf("json output missing Dist")
	}

	var ybuf bytes.Buffer
	if err := rep.WriteWith(&ybuf, &stats.YAMLBatchReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !bytes.Contains(ybuf.Bytes(), []byte("[")) {
		t.Fatalf("yaml output should carry flow-style sequences:\n%s", ybuf.String())
	}
}
