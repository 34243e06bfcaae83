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

// Uniform 把原始輸出縮放到 (0,1) 的均勻分布。
//
// 泛型參數決定輸出精度（float32 / float64）；縮放一律在 float64 做，
// 最後才截斷，避免 float32 路徑多一次精度損失。
type Uniform[T Floaters] struct{}

func (Uniform[T]) Transform(raw uint32) T {
	return T(float64(raw) * invM1p1)
}

// RawUint32 原樣輸出引擎的原始值，範圍 [1, M1]。
//
// 用於「我要的就是底層序列」的情境（偵錯、相容性比對、自訂轉換）。
type RawUint32 struct{}

func (RawUint32) Transform(raw uint32) uint32 {
	return raw
}
