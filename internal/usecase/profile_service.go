package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	repo "github.com/example/profile-service/internal/adapters/postgres"
	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/domain"
	pkglog "github.com/example/profile-service/pkg/log"
)

// ProfileInput carries the upsert payload. Fields left empty fall back to the
// stored value; there is no way to clear a field through this merge.
type ProfileInput struct {
	Bio     string         `json:"bio"`
	Country string         `json:"country"`
	Socials domain.Socials `json:"socials"`
	Wallets domain.Wallets `json:"wallets"`
}

// OwnerView is the projection of the owning user attached to profile reads.
// Email is populated only when the caller owns the profile.
type OwnerView struct {
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type ProfileView struct {
	domain.Profile
	Owner OwnerView `json:"user"`
}

type ProfileService interface {
	Upsert(ctx context.Context, traceID, callerID string, input ProfileInput) (*domain.Profile, bool, error)
	GetByUsername(ctx context.Context, username string) (*ProfileView, error)
	GetMine(ctx context.Context, callerID string) (*ProfileView, error)
	Delete(ctx context.Context, traceID, callerID string) error
	SearchByCountry(ctx context.Context, fragment string) ([]ProfileView, error)
	FindByPlatformUsername(ctx context.Context, platform, username string) (*ProfileView, error)
}

type profileService struct {
	logger   pkglog.Logger
	users    repo.UserRepository
	profiles repo.ProfileRepository
}

func NewProfileService(logger pkglog.Logger, users repo.UserRepository, profiles repo.ProfileRepository) ProfileService {
	return &profileService{logger: logger, users: users, profiles: profiles}
}

// Upsert creates the caller's profile on first call and merges into it on
// subsequent calls. The returned bool is true when a new profile was created.
func (s *profileService) Upsert(ctx context.Context, traceID, callerID string, input ProfileInput) (*domain.Profile, bool, error) {
	if _, err := s.users.FindByID(ctx, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, false, err
	}

	created := false
	existing, err := s.profiles.FindByOwner(ctx, callerID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
	case err != nil:
		return nil, false, err
	default:
		// Unreachable when lookup is scoped by owner, but a forged mismatch
		// must still be rejected.
		if existing.UserID != callerID {
			return nil, false, apperr.New(apperr.Forbidden, "you are not authorized to update this profile")
		}
	}

	// The merge itself runs atomically in the store, keyed by owner. The read
	// above only decides the status code and the ownership check; its result
	// never feeds the write, so overlapping upserts cannot lose fields.
	if err := s.profiles.Upsert(ctx, &domain.Profile{
		UserID:  callerID,
		Bio:     input.Bio,
		Country: input.Country,
		Socials: input.Socials,
		Wallets: input.Wallets,
	}); err != nil {
		return nil, false, err
	}

	profile, err := s.profiles.FindByOwner(ctx, callerID)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", callerID).Bool("created", created).Msg("profile upserted")
	return profile, created, nil
}

func (s *profileService) GetByUsername(ctx context.Context, username string) (*ProfileView, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	profile, err := s.profiles.FindByOwner(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "profile not found")
		}
		return nil, err
	}
	return publicView(profile, user), nil
}

func (s *profileService) GetMine(ctx context.Context, callerID string) (*ProfileView, error) {
	if callerID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "you must be logged in to access your profile")
	}
	profile, err := s.profiles.FindByOwnerWithUser(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "profile not found, please create one first")
		}
		return nil, err
	}
	view := &ProfileView{Profile: *profile}
	if profile.User != nil {
		view.Owner = OwnerView{
			Name:     profile.User.Name,
			Username: profile.User.Username,
			Email:    profile.User.Email,
		}
	}
	view.User = nil
	return view, nil
}

func (s *profileService) Delete(ctx context.Context, traceID, callerID string) error {
	if callerID == "" {
		return apperr.New(apperr.Unauthenticated, "you must be logged in to delete your profile")
	}
	deleted, err := s.profiles.DeleteByOwner(ctx, callerID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.New(apperr.NotFound, "profile not found")
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", callerID).Msg("profile deleted")
	return nil
}

func (s *profileService) SearchByCountry(ctx context.Context, fragment string) ([]ProfileView, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, apperr.New(apperr.BadRequest, "country parameter is required")
	}
	profiles, err := s.profiles.SearchByCountry(ctx, fragment)
	if err != nil {
		return nil, err
	}
	views := make([]ProfileView, 0, len(profiles))
	for i := range profiles {
		p := profiles[i]
		view := ProfileView{Profile: p}
		if p.User != nil {
			view.Owner = OwnerView{Name: p.User.Name, Username: p.User.Username}
		}
		view.User = nil
		views = append(views, view)
	}
	return views, nil
}

func (s *profileService) FindByPlatformUsername(ctx context.Context, platform, username string) (*ProfileView, error) {
	if platform == "" || username == "" {
		return nil, apperr.New(apperr.BadRequest, "platform and username are required")
	}
	if !domain.ValidSocialPlatform(platform) {
		return nil, apperr.New(apperr.BadRequest, "unknown platform")
	}
	profile, err := s.profiles.FindBySocial(ctx, platform, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "profile not found")
		}
		return nil, err
	}
	if profile.User != nil {
		return publicView(profile, profile.User), nil
	}
	view := &ProfileView{Profile: *profile}
	view.User = nil
	return view, nil
}

// publicView joins a profile with the restricted projection of its owner.
// Email is never included here.
func publicView(profile *domain.Profile, user *domain.User) *ProfileView {
	created := user.CreatedAt
	view := &ProfileView{
		Profile: *profile,
		Owner: OwnerView{
			Name:      user.Name,
			Username:  user.Username,
			CreatedAt: &created,
		},
	}
	view.User = nil
	return view
}
