package app

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"github.com/anonto42/codecircle/backend/internal/services"
)

// idTokenVerifier is the part of the Firebase auth client used for login.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier checks Firebase ID tokens for UserService.FirebaseLogin.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify validates the token and reads the identity claims Firebase puts in it.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*services.ExternalIdentity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &services.ExternalIdentity{
		UID:     token.UID,
		Email:   stringClaim(token.Claims, "email"),
		Name:    stringClaim(token.Claims, "name"),
		Picture: stringClaim(token.Claims, "picture"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
