package service

import (
	"testing"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/internal/db"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_Set(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	svc := NewConfigService(repository.NewConfigRepository(testDB))

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"valid threshold", model.ConfigMaxStringDistance, "4", nil},
		{"zero threshold", model.ConfigMaxStringDistance, " 0 ", nil},
		{"negative threshold", model.ConfigMaxStringDistance, "-1", apperrors.ErrFormatViolation},
		{"non numeric threshold", model.ConfigMaxStringDistance, "three", apperrors.ErrFormatViolation},
		{"free form entry", "export_prefix", "ledger", nil},
		{"missing name", "  ", "x", apperrors.ErrFormatViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := svc.Set(tt.key, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			stored, err := svc.Get(entry.Name)
			require.NoError(t, err)
			assert.Equal(t, entry.Value, stored.Value)
		})
	}

	// the rejected writes left the last valid value in place
	stored, err := svc.Get(model.ConfigMaxStringDistance)
	require.NoError(t, err)
	assert.Equal(t, "0", stored.Value)

	_, err = svc.Get("unknown")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseMaxDistance(t *testing.T) {
	n, err := ParseMaxDistance("7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ParseMaxDistance("1.5")
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}
