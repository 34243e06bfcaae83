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

// Package dist 提供分布轉換子（functor）：把引擎的原始輸出變成有型別的變量。
//
// 本檔案 (define.go) 定義兩種轉換合約與通用的泛型約束：
//
//   - Unary：一顆原始輸出 → 一個結果（均勻、Poisson 這類 1:1 分布）。
//   - Paired：兩顆原始輸出 → 一對獨立結果（Box-Muller 這類 2:1 配對分布）。
//
// 轉換子必須是無狀態（或唯讀小狀態）的值：掃描協定會把同一個轉換子
// 複製進多個 worker 同時使用，任何可變狀態都會破壞決定性。
package dist

import "github.com/zintix-labs/randlab/sdk/core"

// invM1p1 將原始輸出 [1, M1] 壓到開區間 (0,1)，兩端都不會碰到。
// 開區間是刻意的：配對轉換需要 log(u)，u==0 會炸；u==1 則會讓 log 變 0 退化。
const invM1p1 = 1.0 / float64(core.M1+1)

// Unary 定義 1:1 轉換合約：一顆原始輸出產生一個結果。
type Unary[T any] interface {
	Transform(raw uint32) T
}

// Paired 定義 2:1 配對轉換合約：兩顆原始輸出產生一對互相獨立的結果。
type Paired[T any] interface {
	TransformPair(ra, rb uint32) (T, T)
}

// Integers 定義所有底層實現為整數型別的集合
type Integers interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Floaters 定義所有底層實現為浮點數型別的集合
type Floaters interface {
	~float32 | ~float64
}

// Numbers 定義所有底層實現為數值型別的集合（整數與浮點數）
type Numbers interface {
	Integers | Floaters
}
