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

import "math"

// Normal 以 Box-Muller 把兩顆原始輸出轉成一對獨立的常態變量。
//
// 為什麼是配對（2:1）而不是 1:1？
//   - Box-Muller 天生一次吃兩個均勻變量、吐兩個獨立常態變量。
//   - 丟掉第二個等於浪費一半的引擎輸出；掃描協定因此對這類分布
//     走「兩顆進、兩格出」的配對掃描（見根包的配對協定）。
type Normal[T Floaters] struct {
	Mean   T
	StdDev T
}

func (d Normal[T]) TransformPair(ra, rb uint32) (T, T) {
	z0, z1 := boxMuller(ra, rb)
	return d.Mean + d.StdDev*T(z0), d.Mean + d.StdDev*T(z1)
}

// LogNormal 與 Normal 同構，只是把常態變量取 exp。
// 參數 Mean / StdDev 是「底層常態分布」的參數，不是對數常態本身的期望值。
type LogNormal[T Floaters] struct {
	Mean   T
	StdDev T
}

func (d LogNormal[T]) TransformPair(ra, rb uint32) (T, T) {
	z0, z1 := boxMuller(ra, rb)
	return T(math.Exp(float64(d.Mean) + float64(d.StdDev)*z0)),
		T(math.Exp(float64(d.Mean) + float64(d.StdDev)*z1))
}

// boxMuller 回傳一對獨立的標準常態變量。
// u1, u2 落在開區間 (0,1)（由縮放常數保證），log 與 sqrt 都不會出事。
func boxMuller(ra, rb uint32) (float64, float64) {
	u1 := float64(ra) * invM1p1
	u2 := float64(rb) * invM1p1
	r := math.Sqrt(-2.0 * math.Log(u1))
	th := 2.0 * math.Pi * u2
	return r * math.Cos(th), r * math.Sin(th)
}
