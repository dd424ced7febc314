package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cardioalert/internal/apperror"
	"cardioalert/internal/geo"
	"cardioalert/internal/models"
	"cardioalert/internal/repository"

	"gorm.io/gorm"
)

type HospitalService struct {
	hospitalRepo *repository.HospitalRepository
	staffRepo    *repository.HospitalStaffRepository
	userRepo     *repository.UserRepository
	auditRepo    *repository.AuditRepository
}

func NewHospitalService(
	hospitalRepo *repository.HospitalRepository,
	staffRepo *repository.HospitalStaffRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditRepository,
) *HospitalService {
	return &HospitalService{
		hospitalRepo: hospitalRepo,
		staffRepo:    staffRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
	}
}

// FindNearby returns active hospitals within radiusKm of (lat, lon), nearest first,
// ties broken by hospital id, truncated to limit. No match is an empty result.
func (s *HospitalService) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]models.NearbyHospital, error) {
	if limit <= 0 {
		return []models.NearbyHospital{}, nil
	}

	hospitals, err := s.hospitalRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]models.NearbyHospital, 0, len(hospitals))
	for _, h := range hospitals {
		d := geo.DistanceKm(lat, lon, h.Latitude, h.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, models.NearbyHospital{Hospital: h, DistanceKm: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})

	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// ListHospitals returns all active hospitals
func (s *HospitalService) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	return s.hospitalRepo.FindActive(ctx)
}

// GetHospital returns one active hospital
func (s *HospitalService) GetHospital(ctx context.Context, id string) (*models.Hospital, error) {
	return s.hospitalRepo.FindByID(ctx, id)
}

// HospitalInput carries the editable fields of a hospital
type HospitalInput struct {
	ID             string  `json:"id"`
	Name           string  `json:"name" binding:"required"`
	Address        string  `json:"address" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	EmergencyEmail *string `json:"emergency_email"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	FCMTopic       string  `json:"fcm_topic"`
}

func (in HospitalInput) validate() error {
	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		return apperror.Validation("invalid hospital coordinates")
	}
	return nil
}

// CreateHospital creates a new hospital (admin only)
func (s *HospitalService) CreateHospital(ctx context.Context, in HospitalInput, adminID uint) (*models.Hospital, error) {
	if in.ID == "" {
		return nil, apperror.Validation("hospital id is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	exists, err := s.hospitalRepo.Exists(ctx, in.ID)
	if err != nil {
		return nil, apperror.Internal("failed to check hospital id", err)
	}
	if exists {
		return nil, apperror.Conflict(fmt.Sprintf("hospital %s already exists", in.ID))
	}

	hospital := &models.Hospital{
		ID:             in.ID,
		Name:           in.Name,
		Address:        in.Address,
		Phone:          in.Phone,
		EmergencyEmail: in.EmergencyEmail,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		FCMTopic:       in.FCMTopic,
		IsActive:       true,
	}
	if hospital.FCMTopic == "" {
		hospital.FCMTopic = hospital.Channel()
	}

	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(fmt.Sprintf("hospital %s already exists", in.ID))
		}
		return nil, apperror.Internal("failed to create hospital", err)
	}

	details := fmt.Sprintf("Created hospital: %s (ID: %s)", hospital.Name, hospital.ID)
	_ = s.auditRepo.CreateAuditLog(ctx, &adminID, models.AuditHospitalCreate, details)

	return hospital, nil
}

// UpdateHospital updates an existing hospital (admin only)
func (s *HospitalService) UpdateHospital(ctx context.Context, id string, in HospitalInput, adminID uint) (*models.Hospital, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hospital, err := s.hospitalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hospital.Name = in.Name
	hospital.Address = in.Address
	hospital.Phone = in.Phone
	hospital.EmergencyEmail = in.EmergencyEmail
	hospital.Latitude = in.Latitude
	hospital.Longitude = in.Longitude
	if in.FCMTopic != "" {
		hospital.FCMTopic = in.FCMTopic
	}

	if err := s.hospitalRepo.Update(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to update hospital: %w", err)
	}

	details := fmt.Sprintf("Updated hospital: %s (ID: %s)", hospital.Name, hospital.ID)
	_ = s.auditRepo.CreateAuditLog(ctx, &adminID, models.AuditHospitalUpdate, details)

	return hospital, nil
}

// DeleteHospital deactivates a hospital (admin only). Past alert links keep referencing it.
func (s *HospitalService) DeleteHospital(ctx context.Context, id string, adminID uint) error {
	if err := s.hospitalRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	details := fmt.Sprintf("Deactivated hospital ID %s", id)
	_ = s.auditRepo.CreateAuditLog(ctx, &adminID, models.AuditHospitalDelete, details)

	return nil
}

// AssignStaff lets a user acknowledge alerts on behalf of a hospital (admin only)
func (s *HospitalService) AssignStaff(ctx context.Context, hospitalID string, userID uint, adminID uint) error {
	if _, err := s.hospitalRepo.FindByID(ctx, hospitalID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}

	if err := s.staffRepo.Assign(ctx, userID, hospitalID); err != nil {
		return fmt.Errorf("failed to assign staff to hospital: %w", err)
	}

	details := fmt.Sprintf("Assigned user ID %d to hospital ID %s", userID, hospitalID)
	_ = s.auditRepo.CreateAuditLog(ctx, &adminID, models.AuditStaffAssign, details)

	return nil
}

// CheckStaffAccess returns nil when the user may act for the hospital.
// Admins may act for every hospital.
func (s *HospitalService) CheckStaffAccess(ctx context.Context, userID uint, role, hospitalID string) error {
	if role == models.RoleAdmin {
		return nil
	}

	isStaff, err := s.staffRepo.IsStaff(ctx, userID, hospitalID)
	if err != nil {
		return fmt.Errorf("failed to check hospital staff: %w", err)
	}
	if !isStaff {
		return apperror.Forbidden("access denied: you are not staff of this hospital")
	}
	return nil
}
