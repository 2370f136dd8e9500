package authservice

import (
	"context"
	"crypto/subtle"
	"fmt"
	"inventory/metrics"
	"inventory/models"
	"inventory/providers"
	"inventory/serviceprovider/auth"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const minPasswordLen = 6

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthService interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Register(ctx context.Context, req RegisterReq) (models.Session, error)
	CheckSession(ctx context.Context, token string) (models.Session, error)
	Logout(ctx context.Context, token string) error
	LoginWithIDToken(ctx context.Context, idToken string) (models.Session, error)
}

type Option func(*authService)

func WithClock(now func() time.Time) Option {
	return func(s *authService) {
		s.now = now
	}
}

// WithFirebase enables delegated login through the identity provider.
func WithFirebase(fb providers.FirebaseProvider) Option {
	return func(s *authService) {
		s.firebase = fb
	}
}

type authService struct {
	repo          AuthRepository
	jwt           auth.JWTService
	firebase      providers.FirebaseProvider
	logger        providers.ZapLoggerProvider
	allowedDomain string
	sessionTTL    time.Duration
	now           func() time.Time

	// usersMu serialises read-modify-write of the users document
	usersMu sync.Mutex
}

func NewAuthService(repo AuthRepository, jwt auth.JWTService, logger providers.ZapLoggerProvider, allowedDomain string, sessionTTL time.Duration, opts ...Option) AuthService {
	s := &authService{
		repo:          repo,
		jwt:           jwt,
		logger:        logger,
		allowedDomain: strings.ToLower(allowedDomain),
		sessionTTL:    sessionTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// validateEmail checks the shape first, then the organisational suffix.
func (s *authService) validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.ErrInvalidFormat
	}
	if !strings.HasSuffix(strings.ToLower(email), s.allowedDomain) {
		return errors.Wrapf(models.ErrForbiddenDomain, "only %s addresses are allowed", s.allowedDomain)
	}
	return nil
}

func findUser(users []models.User, email string) (int, bool) {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return i, true
		}
	}
	return -1, false
}

func (s *authService) Login(ctx context.Context, email, password string) (session models.Session, err error) {
	defer func() {
		metrics.AuthAttemptCounter.WithLabelValues("password", metrics.Result(err)).Inc()
	}()

	email = strings.TrimSpace(email)
	if err := s.validateEmail(email); err != nil {
		return models.Session{}, err
	}

	s.usersMu.Lock()
	users, err := s.repo.GetUsers(ctx)
	s.usersMu.Unlock()
	if err != nil {
		return models.Session{}, err
	}

	idx, ok := findUser(users, email)
	if !ok || !checkPassword(password, users[idx].PasswordHash, users[idx].PasswordSalt) {
		s.logger.GetLogger().Info("login rejected", zap.String("email", email))
		return models.Session{}, models.ErrInvalidCredentials
	}
	return s.establishSession(ctx, users[idx])
}

// Register stores a new local account and logs it in.
func (s *authService) Register(ctx context.Context, req RegisterReq) (models.Session, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.validateEmail(email); err != nil {
		return models.Session{}, err
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		return models.Session{}, models.ErrWeakPassword
	}
	if req.Password != req.ConfirmPassword {
		return models.Session{}, models.ErrPasswordMismatch
	}
	name, role := strings.TrimSpace(req.Name), strings.TrimSpace(req.Role)
	if name == "" || role == "" {
		return models.Session{}, errors.Wrap(models.ErrMissingField, "name and role are required")
	}

	hash, salt, err := hashPassword(req.Password)
	if err != nil {
		return models.Session{}, errors.Wrap(err, "failed to hash password")
	}

	now := s.now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Name:         name,
		Role:         role,
		Provider:     models.ProviderLocal,
		RegisteredAt: now,
		LastAccess:   now,
	}
	if err := s.addUser(ctx, user); err != nil {
		return models.Session{}, err
	}
	s.logger.GetLogger().Info("user registered", zap.String("email", email))

	return s.Login(ctx, email, req.Password)
}

func (s *authService) addUser(ctx context.Context, user models.User) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		return err
	}
	if _, exists := findUser(users, user.Email); exists {
		return models.ErrDuplicateUser
	}
	if err := s.repo.SaveUsers(ctx, append(users, user)); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

func (s *authService) establishSession(ctx context.Context, user models.User) (models.Session, error) {
	now := s.now().UTC()
	expires := now.Add(s.sessionTTL)
	sessionID := uuid.NewString()

	token, err := s.jwt.GenerateSessionToken(sessionID, user.ID, now, expires)
	if err != nil {
		return models.Session{}, errors.Wrap(err, "failed to sign session token")
	}

	public := user.Public()
	public.LastAccess = now
	session := models.Session{
		ID:        sessionID,
		Token:     token,
		User:      public,
		ExpiresAt: expires,
	}
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	s.logger.GetLogger().Info("session started", zap.String("email", user.Email), zap.Time("expires_at", expires))
	return session, nil
}

func stripBearer(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

// CheckSession returns the stored session for token. An expired session is
// removed and reported as ErrSessionExpired.
func (s *authService) CheckSession(ctx context.Context, token string) (models.Session, error) {
	token = stripBearer(token)
	if token == "" {
		return models.Session{}, models.ErrNoSession
	}
	claims, err := s.jwt.ParseSessionToken(token)
	if err != nil {
		return models.Session{}, errors.Wrap(models.ErrNoSession, err.Error())
	}

	session, err := s.repo.GetSession(ctx, claims.SessionID)
	if err != nil {
		return models.Session{}, err
	}
	if subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) != 1 {
		return models.Session{}, models.ErrNoSession
	}
	if !s.now().Before(session.ExpiresAt) {
		if err := s.repo.DeleteSession(ctx, session.ID); err != nil {
			s.logger.GetLogger().Warn("failed to clear expired session", zap.Error(err))
		}
		return models.Session{}, models.ErrSessionExpired
	}
	return session, nil
}

// Logout always succeeds for unknown or malformed tokens.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.ParseSessionToken(stripBearer(token))
	if err != nil {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, claims.SessionID); err != nil && !errors.Is(err, models.ErrKeyNotFound) {
		return err
	}
	s.logger.GetLogger().Info("session closed", zap.String("session", claims.SessionID))
	return nil
}

// LoginWithIDToken verifies a token from the external identity provider and
// opens a session, creating the local account on first use.
func (s *authService) LoginWithIDToken(ctx context.Context, idToken string) (session models.Session, err error) {
	defer func() {
		metrics.AuthAttemptCounter.WithLabelValues("id_token", metrics.Result(err)).Inc()
	}()

	if s.firebase == nil {
		return models.Session{}, models.ErrProviderDisabled
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return models.Session{}, errors.Wrap(models.ErrInvalidCredentials, err.Error())
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if email == "" {
		record, err := s.firebase.GetUserByUID(ctx, token.UID)
		if err != nil {
			return models.Session{}, errors.Wrap(models.ErrInvalidCredentials, err.Error())
		}
		email, name = record.Email, record.DisplayName
	}
	if err := s.validateEmail(email); err != nil {
		return models.Session{}, err
	}

	user, err := s.provisionUser(ctx, email, name)
	if err != nil {
		return models.Session{}, err
	}
	return s.establishSession(ctx, user)
}

func (s *authService) provisionUser(ctx context.Context, email, name string) (models.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	if idx, ok := findUser(users, email); ok {
		return users[idx], nil
	}

	now := s.now().UTC()
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Provider:     models.ProviderFirebase,
		RegisteredAt: now,
		LastAccess:   now,
	}
	if err := s.repo.SaveUsers(ctx, append(users, user)); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	s.logger.GetLogger().Info("user provisioned from identity provider", zap.String("email", email))
	return user, nil
}
