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

package core

// MRG32k3a (L'Ecuyer) 組合乘法遞迴產生器。
//
// 兩條三階遞迴分別跑在模 M1 / M2 上：
//
//	x1[n] = (A12*x1[n-2] - A13N*x1[n-3]) mod M1
//	x2[n] = (A21*x2[n-1] - A23N*x2[n-3]) mod M2
//	out   = (x1[n] - x2[n]) mod M1，取值範圍 [1, M1]
//
// 週期約 2^191；子流跳躍（每線道間隔 2^76 步）與任意步 offset
// 都用 3x3 轉移矩陣的模冪運算完成，建構一次算完。
const (
	M1 uint64 = 4294967087 // 2^32 - 209
	M2 uint64 = 4294944443 // 2^32 - 22853

	A12  uint64 = 1403580
	A13N uint64 = 810728
	A21  uint64 = 527612
	A23N uint64 = 1370589

	// 每線道子流間距：2^76 步
	laneJumpLog2 = 76
)

// MRG32k3a 為單一線道的引擎狀態（值型別）。
//
// s1 / s2 恆保持在 [0, M1) / [0, M2)，且各自不全為零（由種子展開保證）。
type MRG32k3a struct {
	s1 [3]uint32
	s2 [3]uint32
}

// 狀態轉移矩陣（列主序）。
//
//	a1 = | 0      1      0 |   a2 = | 0      1      0 |
//	     | 0      0      1 |        | 0      0      1 |
//	     | -A13N  A12    0 |        | -A23N  0    A21 |
//
// 負係數以模補數表示。
var (
	a1 = mat3{
		0, 1, 0,
		0, 0, 1,
		M1 - A13N, A12, 0,
	}
	a2 = mat3{
		0, 1, 0,
		0, 0, 1,
		M2 - A23N, 0, A21,
	}

	// a1p76 / a2p76 = a1^(2^76) / a2^(2^76)，一次算好供線道跳躍使用
	a1p76 = matPow2(a1, laneJumpLog2, M1)
	a2p76 = matPow2(a2, laneJumpLog2, M2)
)

// NewMRG32k3a 建構第 lane 線道的引擎。
//
// 流程：
//  1. 以 splitmix64 將 seed 展開成六個狀態字（各自壓到 [1, M-1]，永不全零）。
//  2. 跳到第 lane 條子流（前移 lane * 2^76 步）。
//  3. 整體前移 offset 步。
//
// 相同 (seed, lane, offset) 必定產生相同序列；不同 lane 的序列相隔 2^76 步，
// 在任何實際工作量下不重疊。
func NewMRG32k3a(seed uint64, lane uint32, offset uint64) MRG32k3a {
	e := MRG32k3a{}
	x := seed
	for i := 0; i < 3; i++ {
		x = splitmix64(x)
		e.s1[i] = uint32(x%(M1-1) + 1)
	}
	for i := 0; i < 3; i++ {
		x = splitmix64(x)
		e.s2[i] = uint32(x%(M2-1) + 1)
	}
	if lane > 0 {
		e.jumpLanes(lane)
	}
	if offset > 0 {
		e.Skip(offset)
	}
	return e
}

// Next 前進一步並回傳原始輸出，範圍 [1, M1]。
func (e *MRG32k3a) Next() uint32 {
	// 第一條遞迴（mod M1）；乘積最大約 2^52，int64 不會溢位
	p1 := (int64(A12)*int64(e.s1[1]) - int64(A13N)*int64(e.s1[0])) % int64(M1)
	if p1 < 0 {
		p1 += int64(M1)
	}
	e.s1[0], e.s1[1], e.s1[2] = e.s1[1], e.s1[2], uint32(p1)

	// 第二條遞迴（mod M2）
	p2 := (int64(A21)*int64(e.s2[2]) - int64(A23N)*int64(e.s2[0])) % int64(M2)
	if p2 < 0 {
		p2 += int64(M2)
	}
	e.s2[0], e.s2[1], e.s2[2] = e.s2[1], e.s2[2], uint32(p2)

	if p1 <= p2 {
		return uint32(p1 - p2 + int64(M1))
	}
	return uint32(p1 - p2)
}

// Skip 以矩陣模冪一次前移 n 步（等價於呼叫 Next n 次後丟棄結果）。
func (e *MRG32k3a) Skip(n uint64) {
	if n == 0 {
		return
	}
	b1 := matPow(a1, n, M1)
	b2 := matPow(a2, n, M2)
	e.apply(b1, b2)
}

// jumpLanes 前移 lanes * 2^76 步，把引擎送進第 lanes 條子流。
func (e *MRG32k3a) jumpLanes(lanes uint32) {
	b1 := matPow(a1p76, uint64(lanes), M1)
	b2 := matPow(a2p76, uint64(lanes), M2)
	e.apply(b1, b2)
}

func (e *MRG32k3a) apply(b1, b2 mat3) {
	v1 := matVec(b1, [3]uint64{uint64(e.s1[0]), uint64(e.s1[1]), uint64(e.s1[2])}, M1)
	v2 := matVec(b2, [3]uint64{uint64(e.s2[0]), uint64(e.s2[1]), uint64(e.s2[2])}, M2)
	e.s1 = [3]uint32{uint32(v1[0]), uint32(v1[1]), uint32(v1[2])}
	e.s2 = [3]uint32{uint32(v2[0]), uint32(v2[1]), uint32(v2[2])}
}

// --------------------------------------
// 3x3 模矩陣運算
// --------------------------------------

// mat3 為 3x3 矩陣（列主序），元素恆保持在 [0, m)。
type mat3 [9]uint64

// mulMod 回傳 (a*b) mod m。
// a, b 皆 < 2^32，乘積最大 (2^32-1)^2 < 2^64，uint64 恰好裝得下。
func mulMod(a, b, m uint64) uint64 {
	return a * b % m
}

// matMul 回傳 (x*y) mod m。每項乘積先各自取模再相加，避免三項相加溢位。
func matMul(x, y mat3, m uint64) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s := mulMod(x[i*3], y[j], m) + mulMod(x[i*3+1], y[3+j], m) + mulMod(x[i*3+2], y[6+j], m)
			r[i*3+j] = s % m
		}
	}
	return r
}

// matVec 回傳 (x*v) mod m。
func matVec(x mat3, v [3]uint64, m uint64) [3]uint64 {
	var r [3]uint64
	for i := 0; i < 3; i++ {
		s := mulMod(x[i*3], v[0], m) + mulMod(x[i*3+1], v[1], m) + mulMod(x[i*3+2], v[2], m)
		r[i] = s % m
	}
	return r
}

// matPow 以平方-乘法回傳 x^n mod m。
func matPow(x mat3, n uint64, m uint64) mat3 {
	r := matIdentity()
	for n > 0 {
		if n&1 == 1 {
			r = matMul(r, x, m)
		}
		x = matMul(x, x, m)
		n >>= 1
	}
	return r
}

// matPow2 回傳 x^(2^k) mod m（連續平方 k 次；指數超出 uint64 所以不能走 matPow）。
func matPow2(x mat3, k int, m uint64) mat3 {
	for i := 0; i < k; i++ {
		x = matMul(x, x, m)
	}
	return x
}

func matIdentity() mat3 {
	return mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}
