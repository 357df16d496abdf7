package service

import (
	"context"
	"strings"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// ProfileUpdate carries the editable profile fields.  Nil leaves a field
// unchanged; an empty string clears it.
type ProfileUpdate struct {
	Image     *string
	Address   *string
	Location  *string
	Email     *string
	Telephone *string
	DNI       *string
}

type ProfileService struct {
	profiles *repository.ProfileRepo
}

func NewProfileService(profiles *repository.ProfileRepo) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get returns the profile of userID, creating an empty one on first access.
func (s *ProfileService) Get(ctx context.Context, userID uint64) (*model.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// Update applies u to the profile of userID and returns the stored result.
func (s *ProfileService) Update(ctx context.Context, userID uint64, u ProfileUpdate) (*model.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Image != nil {
		p.Image = strings.TrimSpace(*u.Image)
	}
	p.Address = merge(p.Address, u.Address)
	p.Location = merge(p.Location, u.Location)
	p.Email = merge(p.Email, u.Email)
	p.Telephone = merge(p.Telephone, u.Telephone)
	p.DNI = merge(p.DNI, u.DNI)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func merge(cur, in *string) *string {
	if in == nil {
		return cur
	}
	v := strings.TrimSpace(*in)
	if v == "" {
		return nil
	}
	return &v
}
