package authsvc

import (
	"context"

	verifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/auth"
)

type googleVerifier struct {
	clientID string
}

var _ auth.TokenVerifier = (*googleVerifier)(nil)

// NewGoogleVerifier verifies Google ID tokens minted for the configured OAuth client.
func NewGoogleVerifier(conf *core.Config) auth.TokenVerifier {
	return &googleVerifier{clientID: conf.GoogleClientID}
}

func (gv *googleVerifier) Verify(_ context.Context, idToken string) (auth.User, error) {
	v := verifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{gv.clientID}); err != nil {
		return auth.User{}, errors.Wrap(auth.ErrAuthenticationFailed, err.Error())
	}
	claims, err := verifier.Decode(idToken)
	if err != nil {
		return auth.User{}, errors.Wrap(auth.ErrAuthenticationFailed, err.Error())
	}
	if claims.Email == "" || !claims.EmailVerified {
		return auth.User{}, auth.ErrAuthenticationFailed
	}
	return auth.User{Email: claims.Email, Name: claims.Name}, nil
}

// StaticVerifier resolves tokens from a fixed map. For local dev and tests.
type StaticVerifier struct {
	Users map[string]auth.User // token -> identity
}

var _ auth.TokenVerifier = (*StaticVerifier)(nil)

func (sv *StaticVerifier) Verify(_ context.Context, idToken string) (auth.User, error) {
	if usr, ok := sv.Users[idToken]; ok {
		return usr, nil
	}
	return auth.User{}, auth.ErrAuthenticationFailed
}
