package firebase

import (
	"context"
	"fmt"
	"rovify-backend/model"

	"firebase.google.com/go"
	"firebase.google.com/go/auth"
)

// Verifier turns a client supplied Firebase ID token into a verified identity.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*model.SocialIdentity, error)
}

type verifier struct {
	app *firebase.App
}

func NewVerifier(app *firebase.App) Verifier {
	return &verifier{app: app}
}

func (v *verifier) Verify(ctx context.Context, idToken string) (*model.SocialIdentity, error) {
	token, err := VerifyIDToken(ctx, v.app, idToken)
	if err != nil {
		return nil, err
	}
	return identityFromToken(token), nil
}

func VerifyIDToken(ctx context.Context, app *firebase.App, idToken string) (*auth.Token, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("VerifyIDToken: error getting Auth client: %w", err)
	}

	token, err := client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("VerifyIDToken: error verifying ID token: %w", err)
	}

	return token, nil
}

func identityFromToken(token *auth.Token) *model.SocialIdentity {
	id := &model.SocialIdentity{
		UID:      token.UID,
		Email:    claim(token.Claims, "email"),
		Name:     claim(token.Claims, "name"),
		Picture:  claim(token.Claims, "picture"),
		Provider: "firebase",
	}

	if fb, ok := token.Claims["firebase"].(map[string]interface{}); ok {
		if p := claim(fb, "sign_in_provider"); p != "" {
			id.Provider = p
		}
	}
	return id
}

func claim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
