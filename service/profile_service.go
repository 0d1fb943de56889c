package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tenderpack-backend/models"
)

// ProfileService reads and updates an owner's contractor profile and
// remembered field values
type ProfileService struct {
	profiles ProfileStore
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now}
}

// ProfileResult holds an owner's profile and memory. Missing records are
// returned empty.
type ProfileResult struct {
	Profile models.ContractorProfile `json:"profile"`
	Memory  models.FieldValues       `json:"memory"`
}

// GetProfile retrieves the owner's profile and memory
func (s *ProfileService) GetProfile(ctx context.Context, owner string) (*ProfileResult, error) {
	if s.profiles == nil {
		return nil, errors.New("profile store not set")
	}
	in, err := loadInputs(ctx, s.profiles, owner, nil)
	if err != nil {
		return nil, err
	}
	res := &ProfileResult{Profile: in.Profile, Memory: models.FieldValues(in.Memory)}
	res.Profile.YojID = owner
	if res.Memory == nil {
		res.Memory = models.FieldValues{}
	}
	return res, nil
}

// SaveProfile replaces the owner's contractor profile
func (s *ProfileService) SaveProfile(ctx context.Context, owner string, profile models.ContractorProfile) (*models.ContractorProfile, error) {
	if s.profiles == nil {
		return nil, errors.New("profile store not set")
	}
	profile.YojID = owner
	profile.UpdatedAt = s.now()
	if err := s.profiles.SaveContractorProfile(ctx, &profile); err != nil {
		return nil, fmt.Errorf("failed to save contractor profile: %w", err)
	}
	return &profile, nil
}
