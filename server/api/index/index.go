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

package index

import (
	"encoding/json"
	"net/http"
)

// IndexHandlerFn 回服務簡介與路由一覽，給人看也給健康檢查看。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"service": "randlab",
		"routes": []string{
			"GET/POST /v1/draw  (kind, n, seed?, offset?, lanes?, mean?, std?, lambda?, format=json|blob)",
			"GET/POST /v1/sim   (kind, total, batch?, seed?, lanes?, mean?, std?, lambda?)",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
