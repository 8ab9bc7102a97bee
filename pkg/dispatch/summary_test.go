package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netbatch/netbatch/pkg/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		outcomes   Outcomes
		wantStatus models.BatchStatus
		want       models.Summary
	}{
		{
			name: "all success",
			outcomes: Outcomes{
				"a": {Success: true},
				"b": {Success: true},
			},
			wantStatus: models.StatusSuccess,
			want:       models.Summary{Total: 2, Success: 2},
		},
		{
			name: "partial",
			outcomes: Outcomes{
				"a": {Success: true},
				"b": {Success: false, Error: "unreachable"},
			},
			wantStatus: models.StatusPartial,
			want:       models.Summary{Total: 2, Success: 1, Failed: 1},
		},
		{
			name: "all failed",
			outcomes: Outcomes{
				"a": {Success: false},
				"b": {Success: false},
			},
			wantStatus: models.StatusFailed,
			want:       models.Summary{Total: 2, Failed: 2},
		},
		{
			name:       "empty",
			outcomes:   Outcomes{},
			wantStatus: models.StatusFailed,
			want:       models.Summary{},
		},
		{
			name: "changed counted for backups",
			outcomes: Outcomes{
				"a": {Success: true, Backup: &models.SnapshotResult{Changed: true}},
				"b": {Success: true, Backup: &models.SnapshotResult{Changed: false}},
				"c": {Success: false},
			},
			wantStatus: models.StatusPartial,
			want:       models.Summary{Total: 3, Success: 2, Failed: 1, Changed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, summary := Summarize(tt.outcomes)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.want, summary)
		})
	}
}
