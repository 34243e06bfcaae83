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
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/sdk/core"
)

func TestUniformOpenInterval(t *testing.T) {
	var d Uniform[float64]
	e := core.NewMRG32k3a(12345, 0, 0)
	for i := 0; i < 10000; i++ {
		v := d.Transform(e.Next())
		if v <= 0 || v >= 1 {
			t.Fatalf("uniform value %v outside (0,1) at %d", v, i)
		}
	}
}

func TestUniformFloat32Matches(t *testing.T) {
	var d64 Uniform[float64]
	var d32 Uniform[float32]
	e := core.NewMRG32k3a(7, 0, 0)
	for i := 0; i < 100; i++ {
		raw := e.Next()
		if got, want := d32.Transform(raw), float32(d64.Transform(raw)); got != want {
			t.Fatalf("float32 path diverges at %d: %v vs %v", i, got, want)
		}
	}
}

func TestNormalMoments(t *testing.T) {
	d := Normal[float64]{Mean: 2.0, StdDev: 3.0}
	e := core.NewMRG32k3a(12345, 0, 0)

	const n = 200000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n/2; i++ {
		a, b := d.TransformPair(e.Next(), e.Next())
		sum += a + b
		sumSq += a*a + b*b
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean-2.0) > 0.05 {
		t.Fatalf("normal mean off: got %v want 2.0", mean)
	}
	if math.Abs(math.Sqrt(variance)-3.0) > 0.05 {
		t.Fatalf("normal stddev off: got %v want 3.0", math.Sqrt(variance))
	}
}

func TestLogNormalAgainstReference(t *testing.T) {
	d := LogNormal[float64]{Mean: 0.5, StdDev: 0.75}
	ref := distuv.LogNormal{Mu: 0.5, Sigma: 0.75}
	e := core.NewMRG32k3a(99, 0, 0)

	const n = 200000
	sum := 0.0
	for i := 0; i < n/2; i++ {
		a, b := d.TransformPair(e.Next(), e.Next())
		if a <= 0 || b <= 0 {
			t.Fatalf("lognormal produced non-positive value")
		}
		sum += a + b
	}
	mean := sum / n
	if math.Abs(mean-ref.Mean())/ref.Mean() > 0.05 {
		t.Fatalf("lognormal mean off: got %v want %v", mean, ref.Mean())
	}
}

func TestPoissonTableMatchesReferenceCDF(t *testing.T) {
	for _, lambda := range []float64{0.5, 4, 64, 1000} {
		tab, err := BuildPoissonTable(lambda)
		if err != nil {
			t.Fatalf("build table lambda=%v: %v", lambda, err)
		}
		ref := distuv.Poisson{Lambda: lambda}
		for i := 0; i < tab.Len(); i += max(1, tab.Len()/16) {
			k := tab.base + i
			want := ref.CDF(float64(k))
			if got := tab.cdf[i]; math.Abs(got-want) > 1e-9 {
				t.Fatalf("lambda=%v cdf(%d) got %v want %v", lambda, k, got, want)
			}
		}
	}
}

func TestPoissonSampleMean(t *testing.T) {
	const lambda = 20.0
	tab, err := BuildPoissonTable(lambda)
	if err != nil {
		t.Fatal(err)
	}
	d := NewPoisson(tab)
	e := core.NewMRG32k3a(12345, 0, 0)

	const n = 100000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(d.Transform(e.Next()))
	}
	mean := sum / n
	if math.Abs(mean-lambda) > 0.2 {
		t.Fatalf("poisson mean off: got %v want %v", mean, lambda)
	}
}

func TestPoissonInvalidLambda(t *testing.T) {
	for _, lambda := range []float64{0, -1, math.NaN(), math.Inf(1), MaxLambda + 1} {
		_, err := BuildPoissonTable(lambda)
		if err == nil {
			t.Fatalf("expected error for lambda=%v", lambda)
		}
		if errs.StatusOf(err) != errs.StatusInvalidParam {
			t.Fatalf("expected invalid_param for lambda=%v, got %v", lambda, err)
		}
	}
}

func TestPoissonManagerCaching(t *testing.T) {
	m := &PoissonManager{}

	if err := m.SetLambda(10); err != nil {
		t.Fatal(err)
	}
	if err := m.SetLambda(10); err != nil {
		t.Fatal(err)
	}
	if got := m.Rebuilds(); got != 1 {
		t.Fatalf("same lambda must rebuild once, got %d", got)
	}

	if err := m.SetLambda(20); err != nil {
		t.Fatal(err)
	}
	if got := m.Rebuilds(); got != 2 {
		t.Fatalf("lambda change must rebuild exactly once more, got %d", got)
	}
}

func TestPoissonManagerKeepsEntryOnFailure(t *testing.T) {
	m := &PoissonManager{}
	if err := m.SetLambda(5); err != nil {
		t.Fatal(err)
	}

	if err := m.SetLambda(-1); err == nil {
		t.Fatal("expected invalid lambda error")
	}
	// 失敗後前一格必須原封不動
	if m.Functor().table == nil || m.Functor().table.Lambda != 5 {
		t.Fatalf("previous cache entry was not preserved")
	}
	if got := m.Rebuilds(); got != 1 {
		t.Fatalf("failed rebuild must not count, got %d", got)
	}
}
