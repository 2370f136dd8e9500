package firebaseprovider

import (
	"context"
	"inventory/providers"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

type firebaseService struct {
	client *firebaseauth.Client
}

// NewFirebaseProvider builds the identity provider client from a service
// account JSON document.
func NewFirebaseProvider(ctx context.Context, serviceAccountJSON []byte) (providers.FirebaseProvider, error) {
	opt := option.WithCredentialsJSON(serviceAccountJSON)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	return &firebaseService{client: authClient}, nil
}

func (f *firebaseService) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return f.client.VerifyIDToken(ctx, idToken)
}

func (f *firebaseService) GetUserByUID(ctx context.Context, uid string) (*firebaseauth.UserRecord, error) {
	return f.client.GetUser(ctx, uid)
}
