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

// Package core 提供每線道（lane）亂數引擎。
//
// 本包是整個 randlab 的最底層：一個「值型別」的 MRG32k3a 組合乘法遞迴產生器。
// 上層（引擎池 / 掃描協定）只依賴兩件事：
//
//  1. 建構合約：New(seed, lane, offset) 必須是決定性的——
//     相同 (seed, lane, offset) 必須產生相同的內部狀態與輸出序列。
//  2. 取值合約：Next() 前進一步並回傳原始輸出。
//
// 為什麼 lane 由建構參數決定，而不是建好後再 jump？
//   - randlab 的平行模型是「一線道一引擎」：每個 lane 要落在彼此不重疊的子流上。
//   - 子流間距是代數跳躍（2^76 步）推出來的，建構時一次算完，之後熱路徑只剩 Next()。
//   - offset 讓整個池整體前移，用於「從第 offset 顆之後開始」的語意。
//
// 為什麼是值型別（不是指標 + 介面）？
//   - 池內存放的是一大片連續的引擎狀態，掃描時先載入本地副本、掃完再寫回。
//   - 值語意讓「載入/寫回」就是單純的複製，不會有兩個 goroutine 透過同一指標互踩。
package core

// RawRand 定義核心取值能力：前進一步並回傳原始輸出。
//
// 原始輸出的範圍是 [1, M1]（見 mrg32k3a.go），「如何變成 float64 / Poisson」
// 是分布層（sdk/dist）的責任，本包不做任何縮放。
type RawRand interface {
	Next() uint32
}

// Factory 定義每線道引擎的建構合約。
//
// 合約（很重要）：在同一個實作與同一個版本下，New(seed, lane, offset) 必須是
// 「決定性」的，且不同 lane 必須落在統計獨立、不重疊的子流上。
type Factory interface {
	New(seed uint64, lane uint32, offset uint64) MRG32k3a
}

// DefaultFactory 以 NewMRG32k3a 滿足 Factory 合約。
type DefaultFactory struct{}

// New 滿足合約
func (DefaultFactory) New(seed uint64, lane uint32, offset uint64) MRG32k3a {
	return NewMRG32k3a(seed, lane, offset)
}

func Default() Factory {
	return DefaultFactory{}
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
