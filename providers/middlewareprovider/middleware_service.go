package middlewareprovider

import (
	"context"
	"inventory/models"
	"inventory/providers"
	"inventory/utils"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type contextKey string

const sessionContextKey contextKey = "session_key"

// SessionChecker resolves a bearer token to a live session.
type SessionChecker interface {
	CheckSession(ctx context.Context, token string) (models.Session, error)
}

type DefaultAuthMiddleware struct {
	checker SessionChecker
	logger  providers.ZapLoggerProvider
}

func NewAuthMiddlewareService(checker SessionChecker, logger providers.ZapLoggerProvider) providers.AuthMiddlewareService {
	return &DefaultAuthMiddleware{
		checker: checker,
		logger:  logger,
	}
}

func (a *DefaultAuthMiddleware) SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, models.ErrNoSession, "missing access token")
				return
			}

			session, err := a.checker.CheckSession(r.Context(), token)
			if err != nil {
				status := utils.StatusForError(err)
				if status >= http.StatusInternalServerError {
					a.logger.GetLogger().Error("session lookup failed", zap.Error(err))
				}
				utils.RespondError(w, status, err, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *DefaultAuthMiddleware) GetSessionFromContext(r *http.Request) (models.Session, error) {
	session, ok := r.Context().Value(sessionContextKey).(models.Session)
	if !ok {
		return models.Session{}, errors.Wrap(models.ErrNoSession, "session not found in context")
	}
	return session, nil
}
