package service

import (
	"context"
	"testing"
	"time"

	"stash/internal/domain"
	"stash/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) SetVerified(ctx context.Context, id uuid.UUID) error {
	for _, user := range m.users {
		if user.ID == id {
			user.Verified = true
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockVerificationTokenRepository struct {
	tokens map[string]*domain.VerificationToken
}

func newMockVerificationTokenRepository() *mockVerificationTokenRepository {
	return &mockVerificationTokenRepository{
		tokens: make(map[string]*domain.VerificationToken),
	}
}

func (m *mockVerificationTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockVerificationTokenRepository) FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	verificationToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrVerificationTokenNotFound
	}
	return verificationToken, nil
}

func (m *mockVerificationTokenRepository) Delete(ctx context.Context, token string) error {
	if _, exists := m.tokens[token]; !exists {
		return repository.ErrVerificationTokenNotFound
	}
	delete(m.tokens, token)
	return nil
}

type mockMailer struct {
	sent []string
}

func (m *mockMailer) SendVerification(to, token string) error {
	m.sent = append(m.sent, token)
	return nil
}

func newTestUserService() (UserService, *mockUserRepository, *mockRefreshTokenRepository, *mockVerificationTokenRepository, *mockMailer) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	verificationTokenRepo := newMockVerificationTokenRepository()
	mailer := &mockMailer{}
	svc := NewUserService(userRepo, refreshTokenRepo, verificationTokenRepo, mailer, "test-secret-key", zap.NewNop())
	return svc, userRepo, refreshTokenRepo, verificationTokenRepo, mailer
}

// Feature: accounts, Property: registration creates hashed passwords
func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string) bool {
			service, userRepo, _, _, _ := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, email, password)
			if err != nil {
				// If registration fails, skip this test case
				return true
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
			if err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash or doesn't match: %v", err)
				return false
			}

			storedUser, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}

			if storedUser.PasswordHash != user.PasswordHash {
				t.Logf("FAIL: Stored password hash doesn't match returned password hash")
				return false
			}

			if storedUser.Verified {
				t.Logf("FAIL: New accounts must start unverified")
				return false
			}

			return true
		},
		// Generate valid email addresses
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		// Generate passwords with at least 8 characters
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: accounts, Property: JWT tokens contain required claims
func TestProperty_JWTTokensContainRequiredClaims(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens contain user ID and verification claims", prop.ForAll(
		func(email string, password string, verified bool) bool {
			service, userRepo, _, _, _ := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, email, password)
			if err != nil {
				return true // Skip if registration fails
			}

			user.Verified = verified
			userRepo.users[email] = user

			accessToken, _, _, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: User ID claim mismatch. Expected %s, got %s", user.ID, claims.UserID)
				return false
			}

			if claims.Verified != verified {
				t.Logf("FAIL: Verified claim mismatch. Expected %v, got %v", verified, claims.Verified)
				return false
			}

			if claims.ExpiresAt == nil {
				t.Logf("FAIL: Token missing expiration claim")
				return false
			}

			if claims.IssuedAt == nil {
				t.Logf("FAIL: Token missing issued at claim")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: accounts, Property: token refresh round trip
func TestProperty_TokenRefreshRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid refresh token returns new valid access token", prop.ForAll(
		func(email string, password string) bool {
			service, _, _, _, _ := newTestUserService()
			ctx := context.Background()

			_, err := service.Register(ctx, email, password)
			if err != nil {
				return true // Skip if registration fails
			}

			_, refreshToken, user, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			newAccessToken, err := service.RefreshToken(ctx, refreshToken)
			if err != nil {
				t.Logf("FAIL: Token refresh failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(newAccessToken)
			if err != nil {
				t.Logf("FAIL: New access token validation failed: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: User ID mismatch in refreshed token")
				return false
			}

			if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
				t.Logf("FAIL: Refreshed token is already expired")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: accounts, Property: logout invalidates refresh token
func TestProperty_LogoutInvalidatesRefreshToken(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("logout marks refresh token as revoked", prop.ForAll(
		func(email string, password string) bool {
			service, _, refreshTokenRepo, _, _ := newTestUserService()
			ctx := context.Background()

			_, err := service.Register(ctx, email, password)
			if err != nil {
				return true // Skip if registration fails
			}

			_, refreshToken, _, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			_, err = service.RefreshToken(ctx, refreshToken)
			if err != nil {
				t.Logf("FAIL: Refresh token should work before logout: %v", err)
				return false
			}

			err = service.Logout(ctx, refreshToken)
			if err != nil {
				t.Logf("FAIL: Logout failed: %v", err)
				return false
			}

			_, err = service.RefreshToken(ctx, refreshToken)
			if err != ErrInvalidToken {
				t.Logf("FAIL: Expected ErrInvalidToken after logout, got: %v", err)
				return false
			}

			storedToken, err := refreshTokenRepo.FindByToken(ctx, refreshToken)
			if err != repository.ErrRefreshTokenRevoked {
				t.Logf("FAIL: Token should be revoked in repository, got error: %v", err)
				return false
			}

			if storedToken != nil {
				t.Logf("FAIL: Revoked token should not be returned")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestVerifyEmail(t *testing.T) {
	service, userRepo, _, verificationTokenRepo, mailer := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "new@example.com", "supersecret1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one verification email, got %d", len(mailer.sent))
	}

	token := mailer.sent[0]
	if err := service.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	stored, err := userRepo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !stored.Verified {
		t.Error("account should be verified after consuming the token")
	}

	// Token is single-use
	if err := service.VerifyEmail(ctx, token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken on reuse, got %v", err)
	}

	if _, exists := verificationTokenRepo.tokens[token]; exists {
		t.Error("consumed token should be deleted")
	}
}

func TestVerifyEmail_Expired(t *testing.T) {
	service, _, _, verificationTokenRepo, _ := newTestUserService()
	ctx := context.Background()

	expired := &domain.VerificationToken{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}
	verificationTokenRepo.tokens[expired.Token] = expired

	if err := service.VerifyEmail(ctx, expired.Token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
