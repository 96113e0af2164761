package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "get-plan-limits", DisplayName: "Get Plan Limits", Category: CategorySubscription, TaskType: "get-plan-limits", ImplementationStatus: "completed", Timeout: "10s"},
			{ID: "rank-candidates", DisplayName: "Rank Candidates", Category: CategoryMatching, TaskType: "rank-candidates", ImplementationStatus: "completed", Timeout: "60s"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(r *ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"duplicate id", func(r *ActivityRegistry) { r.Activities[1].ID = "get-plan-limits" }, "duplicate activity ID"},
		{"duplicate task type", func(r *ActivityRegistry) { r.Activities[1].TaskType = "get-plan-limits" }, "duplicate task type"},
		{"unknown category", func(r *ActivityRegistry) { r.Activities[0].Category = "crm" }, "unknown category"},
		{"unknown status", func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "done" }, "unknown status"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "ten seconds" }, "invalid timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := sampleRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddFindMissing(t *testing.T) {
	reg := sampleRegistry()

	require.NoError(t, reg.Add(Activity{ID: "send-notification", TaskType: "send-notification"}))
	assert.Error(t, reg.Add(Activity{ID: "send-notification", TaskType: "other"}))
	assert.Error(t, reg.Add(Activity{ID: "other", TaskType: "rank-candidates"}))

	a, ok := reg.Find("rank-candidates")
	require.True(t, ok)
	assert.Equal(t, CategoryMatching, a.Category)

	assert.Equal(t, []string{"check-job-expiration"}, reg.Missing([]string{"get-plan-limits", "check-job-expiration"}))
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := sampleRegistry()
	require.NoError(t, reg.Save(path, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15T12:00:00Z", loaded.LastUpdated)
	assert.Len(t, loaded.Activities, 2)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestShippedRegistryIsValid(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 10)
}
