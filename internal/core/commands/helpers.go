// Copyright 2025 Viaje Scout Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	goctx "context"
	"time"

	"github.com/viajescout/viaje-scout/internal/core/cor"
)

// contextWithTimeout derives a deadline-bound Go context from the workflow
// context. A non-positive timeout means no deadline.
func contextWithTimeout(context cor.Context, timeout time.Duration) (goctx.Context, goctx.CancelFunc) {
	if timeout <= 0 {
		return goctx.WithCancel(context.GetContext())
	}
	return goctx.WithTimeout(context.GetContext(), timeout)
}
