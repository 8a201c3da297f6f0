package unit

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/domain"
	"github.com/example/profile-service/internal/usecase"
	pkglog "github.com/example/profile-service/pkg/log"
)

type mockUserRepo struct {
	users map[string]*domain.User
	next  int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}}
}

func (r *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		r.next++
		user.ID = fmt.Sprintf("user-%d", r.next)
	}
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

// mockProfileRepo reproduces the store-side merge: an empty incoming field
// keeps the stored value, a non-empty one overwrites it.
type mockProfileRepo struct {
	users    *mockUserRepo
	profiles map[string]*domain.Profile
	next     int

	findByOwnerFn func(userID string) (*domain.Profile, error)
}

func newMockProfileRepo(users *mockUserRepo) *mockProfileRepo {
	return &mockProfileRepo{users: users, profiles: map[string]*domain.Profile{}}
}

func (r *mockProfileRepo) FindByOwner(_ context.Context, userID string) (*domain.Profile, error) {
	if r.findByOwnerFn != nil {
		return r.findByOwnerFn(userID)
	}
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProfileRepo) FindByOwnerWithUser(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := r.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u, ok := r.users.users[p.UserID]; ok {
		p.User = u
	}
	return p, nil
}

func mergeField(incoming, stored string) string {
	if incoming != "" {
		return incoming
	}
	return stored
}

func (r *mockProfileRepo) Upsert(_ context.Context, profile *domain.Profile) error {
	existing, ok := r.profiles[profile.UserID]
	if !ok {
		r.next++
		cp := *profile
		cp.ID = fmt.Sprintf("profile-%d", r.next)
		r.profiles[profile.UserID] = &cp
		return nil
	}
	existing.Bio = mergeField(profile.Bio, existing.Bio)
	existing.Country = mergeField(profile.Country, existing.Country)
	existing.Socials.X = mergeField(profile.Socials.X, existing.Socials.X)
	existing.Socials.Facebook = mergeField(profile.Socials.Facebook, existing.Socials.Facebook)
	existing.Socials.Linkedin = mergeField(profile.Socials.Linkedin, existing.Socials.Linkedin)
	existing.Socials.Github = mergeField(profile.Socials.Github, existing.Socials.Github)
	existing.Socials.Youtube = mergeField(profile.Socials.Youtube, existing.Socials.Youtube)
	existing.Wallets.Sui = mergeField(profile.Wallets.Sui, existing.Wallets.Sui)
	existing.Wallets.Solana = mergeField(profile.Wallets.Solana, existing.Wallets.Solana)
	existing.Wallets.Ethereum = mergeField(profile.Wallets.Ethereum, existing.Wallets.Ethereum)
	return nil
}

func (r *mockProfileRepo) DeleteByOwner(_ context.Context, userID string) (bool, error) {
	if _, ok := r.profiles[userID]; !ok {
		return false, nil
	}
	delete(r.profiles, userID)
	return true, nil
}

func (r *mockProfileRepo) SearchByCountry(_ context.Context, fragment string) ([]domain.Profile, error) {
	var out []domain.Profile
	needle := strings.ToLower(fragment)
	for _, p := range r.profiles {
		if strings.Contains(strings.ToLower(p.Country), needle) {
			cp := *p
			if u, ok := r.users.users[p.UserID]; ok {
				cp.User = u
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *mockProfileRepo) FindBySocial(_ context.Context, platform, username string) (*domain.Profile, error) {
	for _, p := range r.profiles {
		fields := map[string]string{
			"x":        p.Socials.X,
			"facebook": p.Socials.Facebook,
			"linkedin": p.Socials.Linkedin,
			"github":   p.Socials.Github,
			"youtube":  p.Socials.Youtube,
		}
		if fields[platform] == username {
			cp := *p
			if u, ok := r.users.users[p.UserID]; ok {
				cp.User = u
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newProfileService(t *testing.T) (usecase.ProfileService, *mockUserRepo, *mockProfileRepo) {
	t.Helper()
	users := newMockUserRepo()
	profiles := newMockProfileRepo(users)
	return usecase.NewProfileService(pkglog.New("test"), users, profiles), users, profiles
}

func seedUser(t *testing.T, users *mockUserRepo, name, username, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Username: username, Email: email, PasswordHash: "hash"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestUpsertCreatesProfile(t *testing.T) {
	svc, users, profiles := newProfileService(t)
	u := seedUser(t, users, "Manish", "manish", "manish@example.com")

	profile, created, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{
		Bio:     "hi",
		Country: "Nepal",
		Socials: domain.Socials{X: "manish_x"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !created {
		t.Fatalf("expected created")
	}
	if profile.UserID != u.ID || profile.Bio != "hi" || profile.Socials.X != "manish_x" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profiles.profiles) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(profiles.profiles))
	}
}

func TestUpsertUnknownUser(t *testing.T) {
	svc, _, _ := newProfileService(t)
	_, _, err := svc.Upsert(context.Background(), "trace", "ghost", usecase.ProfileInput{Bio: "hi"})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpsertUpdatesWithoutSecondProfile(t *testing.T) {
	svc, users, profiles := newProfileService(t)
	u := seedUser(t, users, "Manish", "manish", "manish@example.com")

	if _, _, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{Bio: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	profile, created, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{Country: "Nepal"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if created {
		t.Fatalf("expected update, not create")
	}
	if profile.Bio != "first" || profile.Country != "Nepal" {
		t.Fatalf("merge lost fields: %+v", profile)
	}
	if len(profiles.profiles) != 1 {
		t.Fatalf("owner uniqueness violated: %d profiles", len(profiles.profiles))
	}
}

func TestUpsertOmittedSubfieldsRetained(t *testing.T) {
	svc, users, _ := newProfileService(t)
	u := seedUser(t, users, "Manish", "manish", "manish@example.com")

	if _, _, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{
		Socials: domain.Socials{X: "a", Github: "gh"},
		Wallets: domain.Wallets{Sui: "0xsui"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	profile, _, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{
		Socials: domain.Socials{Youtube: "yt"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if profile.Socials.X != "a" || profile.Socials.Github != "gh" {
		t.Fatalf("omitted socials not retained: %+v", profile.Socials)
	}
	if profile.Socials.Youtube != "yt" {
		t.Fatalf("provided social not applied: %+v", profile.Socials)
	}
	if profile.Wallets.Sui != "0xsui" {
		t.Fatalf("omitted wallet not retained: %+v", profile.Wallets)
	}
}

func TestUpsertRejectsForgedOwner(t *testing.T) {
	svc, users, profiles := newProfileService(t)
	u := seedUser(t, users, "Manish", "manish", "manish@example.com")

	// Inject a lookup that returns someone else's profile for this owner.
	profiles.findByOwnerFn = func(string) (*domain.Profile, error) {
		return &domain.Profile{ID: "profile-x", UserID: "someone-else"}, nil
	}
	_, _, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{Bio: "hack"})
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestGetByUsernamePublicProjection(t *testing.T) {
	svc, users, _ := newProfileService(t)
	a := seedUser(t, users, "Alice", "alice", "alice@example.com")
	if _, _, err := svc.Upsert(context.Background(), "trace", a.ID, usecase.ProfileInput{Bio: "hi"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Bio != "hi" {
		t.Fatalf("unexpected bio: %s", view.Bio)
	}
	if view.Owner.Username != "alice" || view.Owner.Name != "Alice" {
		t.Fatalf("owner projection wrong: %+v", view.Owner)
	}
	if view.Owner.Email != "" {
		t.Fatalf("public view must not expose email")
	}
}

func TestGetByUsernameUnknownUser(t *testing.T) {
	svc, _, _ := newProfileService(t)
	if _, err := svc.GetByUsername(context.Background(), "nonexistent-user"); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGetMineIncludesEmail(t *testing.T) {
	svc, users, _ := newProfileService(t)
	u := seedUser(t, users, "Manish", "manish", "manish@example.com")
	if _, _, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{Bio: "hi"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.GetMine(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get mine: %v", err)
	}
	if view.Owner.Email != "manish@example.com" {
		t.Fatalf("owner email missing: %+v", view.Owner)
	}
}

func TestGetMineRequiresCaller(t *testing.T) {
	svc, _, _ := newProfileService(t)
	if _, err := svc.GetMine(context.Background(), ""); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestDeleteThenGetMine(t *testing.T) {
	svc, users, _ := newProfileService(t)
	u := seedUser(t, users, "Manish", "manish", "manish@example.com")
	if _, _, err := svc.Upsert(context.Background(), "trace", u.ID, usecase.ProfileInput{Bio: "hi"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "trace", u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := svc.GetMine(context.Background(), u.ID)
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if !strings.Contains(err.Error(), "create one first") {
		t.Fatalf("missing create-one-first hint: %v", err)
	}
	if err := svc.Delete(context.Background(), "trace", u.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestSearchByCountry(t *testing.T) {
	svc, users, _ := newProfileService(t)
	a := seedUser(t, users, "Alice", "alice", "alice@example.com")
	b := seedUser(t, users, "Bob", "bob", "bob@example.com")
	c := seedUser(t, users, "Cara", "cara", "cara@example.com")
	mustUpsert(t, svc, a.ID, usecase.ProfileInput{Country: "Brazil"})
	mustUpsert(t, svc, b.ID, usecase.ProfileInput{Country: "BRAZIL"})
	mustUpsert(t, svc, c.ID, usecase.ProfileInput{Country: "Nepal"})

	if _, err := svc.SearchByCountry(context.Background(), ""); apperr.KindOf(err) != apperr.BadRequest {
		t.Fatalf("empty fragment should be BadRequest")
	}
	views, err := svc.SearchByCountry(context.Background(), "bra")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(views))
	}
	for _, v := range views {
		if v.Owner.Username == "" || v.Owner.Email != "" {
			t.Fatalf("owner projection wrong: %+v", v.Owner)
		}
	}
}

func TestFindByPlatformUsername(t *testing.T) {
	svc, users, _ := newProfileService(t)
	a := seedUser(t, users, "Alice", "alice", "alice@example.com")
	mustUpsert(t, svc, a.ID, usecase.ProfileInput{Socials: domain.Socials{Github: "alice-gh"}})

	if _, err := svc.FindByPlatformUsername(context.Background(), "", "alice-gh"); apperr.KindOf(err) != apperr.BadRequest {
		t.Fatalf("missing platform should be BadRequest")
	}
	if _, err := svc.FindByPlatformUsername(context.Background(), "myspace", "alice-gh"); apperr.KindOf(err) != apperr.BadRequest {
		t.Fatalf("unknown platform should be BadRequest")
	}
	if _, err := svc.FindByPlatformUsername(context.Background(), "github", "nobody"); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("no match should be NotFound")
	}
	view, err := svc.FindByPlatformUsername(context.Background(), "github", "alice-gh")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if view.Owner.Username != "alice" || view.Owner.Email != "" {
		t.Fatalf("owner projection wrong: %+v", view.Owner)
	}
}

func mustUpsert(t *testing.T, svc usecase.ProfileService, userID string, input usecase.ProfileInput) {
	t.Helper()
	if _, _, err := svc.Upsert(context.Background(), "trace", userID, input); err != nil {
		t.Fatalf("upsert for %s: %v", userID, err)
	}
}
