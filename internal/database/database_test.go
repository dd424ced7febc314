package database

import (
	"context"
	"testing"

	"cardioalert/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestSeedHospitalsOnlyWhenEmpty(t *testing.T) {
	db, err := OpenSQLite(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	ctx := context.Background()

	require.NoError(t, SeedHospitals(ctx, db))
	require.NoError(t, SeedHospitals(ctx, db))

	var hospitals []models.Hospital
	require.NoError(t, db.Order("id ASC").Find(&hospitals).Error)
	require.Len(t, hospitals, len(DefaultHospitals))
	assert.Equal(t, "H001", hospitals[0].ID)
	assert.True(t, hospitals[0].IsActive)
	assert.Equal(t, "hospital_H001", hospitals[0].Channel())
}
