package authservice

import (
	"context"
	"inventory/models"
	"inventory/providers"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	UsersKey         = "ceeUsers"
	SessionKeyPrefix = "ceeAuthSession:"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AuthRepository keeps the registered users as one document and each session
// under its own key.
type AuthRepository interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	SaveUsers(ctx context.Context, users []models.User) error
	GetSession(ctx context.Context, sessionID string) (models.Session, error)
	SaveSession(ctx context.Context, session models.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}

type KVAuthRepository struct {
	store providers.KVStore
}

func NewAuthRepository(store providers.KVStore) AuthRepository {
	return &KVAuthRepository{store: store}
}

func (r *KVAuthRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	raw, err := r.store.Get(ctx, UsersKey)
	if errors.Is(err, models.ErrKeyNotFound) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read users")
	}
	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, errors.Wrap(err, "failed to decode users")
	}
	return users, nil
}

func (r *KVAuthRepository) SaveUsers(ctx context.Context, users []models.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return errors.Wrap(err, "failed to encode users")
	}
	return r.store.Set(ctx, UsersKey, raw)
}

func (r *KVAuthRepository) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	raw, err := r.store.Get(ctx, SessionKeyPrefix+sessionID)
	if errors.Is(err, models.ErrKeyNotFound) {
		return models.Session{}, models.ErrNoSession
	}
	if err != nil {
		return models.Session{}, errors.Wrap(err, "failed to read session")
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return models.Session{}, errors.Wrap(err, "failed to decode session")
	}
	return session, nil
}

func (r *KVAuthRepository) SaveSession(ctx context.Context, session models.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}
	return r.store.Set(ctx, SessionKeyPrefix+session.ID, raw)
}

func (r *KVAuthRepository) DeleteSession(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, SessionKeyPrefix+sessionID)
}
