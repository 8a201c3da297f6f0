package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/profile-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type ProfileRepository interface {
	FindByOwner(ctx context.Context, userID string) (*domain.Profile, error)
	FindByOwnerWithUser(ctx context.Context, userID string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
	DeleteByOwner(ctx context.Context, userID string) (bool, error)
	SearchByCountry(ctx context.Context, fragment string) ([]domain.Profile, error)
	FindBySocial(ctx context.Context, platform, username string) (*domain.Profile, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
}

type userRepo struct{ db *gorm.DB }

type profileRepo struct{ db *gorm.DB }

type transactionRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepo{db: db} }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier resolves either a username or an email.
func (r *userRepo) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *profileRepo) FindByOwner(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) FindByOwnerWithUser(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// mergeColumns are the columns the upsert merges field-by-field: an incoming
// empty string keeps the stored value, anything else overwrites it.
var mergeColumns = []string{
	"bio", "country",
	"social_x", "social_facebook", "social_linkedin", "social_github", "social_youtube",
	"wallet_sui", "wallet_solana", "wallet_ethereum",
}

// Upsert inserts the profile or, if one already exists for the owner, merges
// the provided fields into it in a single statement. The merge happens inside
// ON CONFLICT so two overlapping upserts for one owner cannot lose each
// other's fields.
func (r *profileRepo) Upsert(ctx context.Context, profile *domain.Profile) error {
	assignments := map[string]interface{}{
		"updated_at": gorm.Expr("now()"),
	}
	for _, col := range mergeColumns {
		assignments[col] = gorm.Expr(
			fmt.Sprintf("CASE WHEN excluded.%s <> '' THEN excluded.%s ELSE profile.%s END", col, col, col),
		)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(profile).Error
}

func (r *profileRepo) DeleteByOwner(ctx context.Context, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Profile{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *profileRepo) SearchByCountry(ctx context.Context, fragment string) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := r.db.WithContext(ctx).Preload("User").
		Where("country ILIKE ?", "%"+fragment+"%").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepo) FindBySocial(ctx context.Context, platform, username string) (*domain.Profile, error) {
	if !domain.ValidSocialPlatform(platform) {
		return nil, gorm.ErrRecordNotFound
	}
	var profile domain.Profile
	if err := r.db.WithContext(ctx).Preload("User").
		Where(fmt.Sprintf("social_%s = ?", platform), username).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *transactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}
