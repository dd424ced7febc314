package middleware

import (
	"context"
	"net/http"
	"testing"

	"cardioalert/internal/database"
	"cardioalert/internal/models"
	"cardioalert/internal/repository"
	"cardioalert/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestRequireHospitalStaff(t *testing.T) {
	db, err := database.OpenSQLite(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedHospitals(context.Background(), db))

	userRepo := repository.NewUserRepo(db)
	nurse := &models.User{Name: "Nurse", Email: "nurse@example.com", PasswordHash: "x", Role: models.RoleStaff}
	require.NoError(t, userRepo.Create(context.Background(), nurse))

	staffRepo := repository.NewHospitalStaffRepo(db)
	require.NoError(t, staffRepo.Assign(context.Background(), nurse.ID, "H001"))

	hospitals := service.NewHospitalService(
		repository.NewHospitalRepo(db), staffRepo, userRepo, repository.NewAuditRepo(db),
	)
	acl := NewAccessControlMiddleware(hospitals)

	r := gin.New()
	r.POST("/alerts/:id/hospitals/:hospital_id/acknowledge", AuthMiddleware(), acl.RequireHospitalStaff(), whoami)

	path := func(hospitalID string) string { return "/alerts/a1/hospitals/" + hospitalID + "/acknowledge" }

	w := do(r, http.MethodPost, path("H001"), "Bearer "+tokenFor(t, nurse.ID, models.RoleStaff))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, path("H002"), "Bearer "+tokenFor(t, nurse.ID, models.RoleStaff))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)

	w = do(r, http.MethodPost, path("H002"), "Bearer "+tokenFor(t, 99, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}
