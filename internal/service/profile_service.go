package service

import (
	"context"

	"github.com/v3ai2026/vision/internal/model"
)

type ProfileStore interface {
	FindByID(ctx context.Context, id string) (model.Profile, error)
	Update(ctx context.Context, p model.Profile) error
}

// ProfileService covers the profile read/update surface behind the gateway.
type ProfileService struct {
	profiles    ProfileStore
	credentials CredentialStore
}

func NewProfileService(profiles ProfileStore, credentials CredentialStore) *ProfileService {
	return &ProfileService{profiles: profiles, credentials: credentials}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (model.Profile, error) {
	return s.profiles.FindByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.Profile, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return model.Profile{}, err
	}

	return s.profiles.FindByID(ctx, userID)
}

// DeleteAccount removes the credential; the profile row follows through the
// store's cascade.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	return s.credentials.Delete(ctx, userID)
}
