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

package v1

import (
	"crypto/rand"
	"math"
	"math/big"
	"net/url"
	"strconv"

	"github.com/zintix-labs/randlab/errs"
)

// query 參數解析小工具：回傳 (值, 有沒有給, 錯誤)。
// 參數格式錯誤一律回 StatusInvalidParam，交給 httperr 映射成 400。

func qInt(q url.Values, key string) (int, bool, error) {
	s := q.Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, errs.NewInvalidParam(key + " must be integer")
	}
	return v, true, nil
}

func qUint64(q url.Values, key string) (uint64, bool, error) {
	s := q.Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, true, errs.NewInvalidParam(key + " must be non-negative integer")
	}
	return v, true, nil
}

func qFloat(q url.Values, key string) (float64, bool, error) {
	s := q.Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, errs.NewInvalidParam(key + " must be number")
	}
	return v, true, nil
}

// randomSeed 在呼叫端沒給 seed 時補一個。
func randomSeed() (uint64, error) {
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewWarn("seed generate failed")
	}
	return rnd.Uint64(), nil
}
