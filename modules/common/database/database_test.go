package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yumcut-cheap-image-generation/modules/common/config"
)

func TestStatusUpdate(t *testing.T) {
	tests := []struct {
		status  string
		started bool
		done    bool
	}{
		{StatusPending, false, false},
		{StatusProcessing, true, false},
		{StatusCompleted, false, true},
		{StatusFailed, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			data := statusUpdate(tt.status, map[string]any{"error_message": "x"})
			assert.Equal(t, tt.status, data["job_status"])
			assert.Equal(t, "now()", data["updated_at"])
			assert.Equal(t, "x", data["error_message"])
			_, hasStarted := data["started_at"]
			_, hasDone := data["completed_at"]
			assert.Equal(t, tt.started, hasStarted)
			assert.Equal(t, tt.done, hasDone)
		})
	}
}

func TestNewClientWithoutSupabase(t *testing.T) {
	assert.Nil(t, NewClient(&config.Config{}))
}
