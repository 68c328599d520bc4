package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyToken checks a Firebase ID token. The role comes from the "role"
// custom claim, or "admin" when the legacy admin flag is set.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*entity.Principal, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &entity.Principal{
		ProfileID: result.UID,
		Role:      roleFromClaims(result.Claims),
	}, nil
}

func roleFromClaims(claims map[string]interface{}) string {
	if role, ok := claims["role"].(string); ok && role != "" {
		return role
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return "admin"
	}
	return ""
}
