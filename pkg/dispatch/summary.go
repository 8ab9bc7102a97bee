/*
 * Copyright 2026 Netbatch Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dispatch

import "github.com/netbatch/netbatch/pkg/models"

// Summarize reduces an outcome map to counts and an overall status:
// Success when nothing failed, Failed when everything did, Partial
// in between. An empty map counts as Failed.
func Summarize(outcomes Outcomes) (models.BatchStatus, models.Summary) {
	summary := models.Summary{Total: len(outcomes)}

	for _, o := range outcomes {
		if !o.Success {
			summary.Failed++
			continue
		}

		summary.Success++

		if o.Backup != nil && o.Backup.Changed {
			summary.Changed++
		}
	}

	switch {
	case summary.Total == 0:
		return models.StatusFailed, summary
	case summary.Failed == 0:
		return models.StatusSuccess, summary
	case summary.Failed == summary.Total:
		return models.StatusFailed, summary
	default:
		return models.StatusPartial, summary
	}
}
