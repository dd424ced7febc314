package database

import (
	"context"
	"fmt"

	"cardioalert/internal/models"
	"cardioalert/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

// DefaultHospitals are the facilities around Shravanabelagola the service ships with
var DefaultHospitals = []models.Hospital{
	{
		ID:             "H001",
		Name:           "Bahubali Children Hospital",
		Address:        "Shri Dhavala Teertham, Chalya Post, Shravanabelagola (Hirisave Road), SH-8, Karnataka",
		Phone:          "+91-81763-41450",
		EmergencyEmail: strPtr("emergency@bahubali-hospital.com"),
		Latitude:       12.8540,
		Longitude:      76.4850,
	},
	{
		ID:             "H002",
		Name:           "Shravanabelagola Government Hospital",
		Address:        "Shravanabelagola Main Road, Shravanabelagola, Karnataka 573135",
		Phone:          "+91-81726-00000",
		EmergencyEmail: strPtr("govt-hospital@shravanabelagola.gov.in"),
		Latitude:       12.8585,
		Longitude:      76.4880,
	},
	{
		ID:             "H003",
		Name:           "Swayam Sevak Nagara Hospital",
		Address:        "Shravanabelagola area, Karnataka",
		Phone:          "+91-81726-00001",
		EmergencyEmail: strPtr("swayamsevak@hospital.com"),
		Latitude:       12.8560,
		Longitude:      76.4900,
	},
	{
		ID:             "H004",
		Name:           "Primary Health Centre (PHC) - Chalya",
		Address:        "Chalya / Nirisare Road, Shravanabelagola, Karnataka",
		Phone:          "+91-81726-00002",
		EmergencyEmail: strPtr("phc-chalya@karnataka.gov.in"),
		Latitude:       12.8450,
		Longitude:      76.4750,
	},
}

// SeedHospitals inserts the default hospitals when the table is empty
func SeedHospitals(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Hospital{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count hospitals: %w", err)
	}
	if count > 0 {
		logger.Info("Found existing hospitals", zap.Int64("count", count))
		return nil
	}

	for _, h := range DefaultHospitals {
		h.IsActive = true
		h.FCMTopic = "hospital_" + h.ID
		if err := db.WithContext(ctx).Create(&h).Error; err != nil {
			return fmt.Errorf("failed to seed hospital %s: %w", h.ID, err)
		}
		logger.Info("Seeded hospital", zap.String("id", h.ID), zap.String("name", h.Name))
	}
	return nil
}
