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

package snapshot

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/netbatch/netbatch/pkg/models"
)

const diffPreviewLines = 50

// unifiedDiff computes a line-based unified diff between two
// configuration blobs with a bounded preview for operator review.
func unifiedDiff(oldText, newText, host string) (*models.DiffSummary, error) {
	diffText, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: host + "_old",
		ToFile:   host + "_new",
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff configurations for %s: %w", host, err)
	}

	if diffText == "" {
		return nil, nil
	}

	lines := strings.Split(strings.TrimRight(diffText, "\n"), "\n")

	summary := &models.DiffSummary{}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			summary.AddedLines++
		case strings.HasPrefix(line, "-"):
			summary.RemovedLines++
		}
	}

	preview := lines
	if len(preview) > diffPreviewLines {
		preview = preview[:diffPreviewLines]
	}

	summary.Preview = strings.Join(preview, "\n")

	return summary, nil
}

// CompareFiles diffs two stored snapshot files. It reports whether the
// contents are identical alongside the diff summary.
func CompareFiles(pathA, pathB string) (*models.DiffSummary, bool, error) {
	a, err := readFile(pathA)
	if err != nil {
		return nil, false, err
	}

	b, err := readFile(pathB)
	if err != nil {
		return nil, false, err
	}

	if a == b {
		return nil, true, nil
	}

	summary, err := unifiedDiff(a, b, "config")
	if err != nil {
		return nil, false, err
	}

	return summary, false, nil
}
