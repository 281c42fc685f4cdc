package security

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	appleIssuer   = "https://appleid.apple.com"
	appleKeysURL  = "https://appleid.apple.com/auth/keys"
	appleAuthURL  = "https://appleid.apple.com/auth/authorize"
	appleTokenURL = "https://appleid.apple.com/auth/token"
)

// AppleIdentity is the verified identity extracted from an Apple id_token
type AppleIdentity struct {
	Subject string
	Email   string
}

// AppleVerifier validates Sign in with Apple id_tokens against Apple's
// published JWKs and can exchange authorization codes when the client
// sends a code instead of a token.
type AppleVerifier struct {
	clientID   string
	oauth      *oauth2.Config
	keysURL    string
	httpClient *http.Client
}

// NewAppleVerifier builds a verifier for the given service id
func NewAppleVerifier(clientID, clientSecret, redirectURL string) *AppleVerifier {
	return &AppleVerifier{
		clientID: clientID,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  appleAuthURL,
				TokenURL: appleTokenURL,
			},
			Scopes: []string{"name", "email"},
		},
		keysURL:    appleKeysURL,
		httpClient: http.DefaultClient,
	}
}

// Configured reports whether a client id is set
func (v *AppleVerifier) Configured() bool {
	return v != nil && v.clientID != ""
}

// ExchangeCode trades an authorization code for an id_token
func (v *AppleVerifier) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := v.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange Apple code: %w", err)
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", errors.New("missing Apple id_token")
	}
	return idToken, nil
}

// VerifyIDToken checks the token signature, issuer, audience and optional
// nonce, and returns the stable subject plus email when present.
func (v *AppleVerifier) VerifyIDToken(ctx context.Context, idToken, nonce string) (AppleIdentity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &appleTokenClaims{}

	parsedToken, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return v.fetchPublicKey(ctx, kid)
	})
	if err != nil || !parsedToken.Valid {
		return AppleIdentity{}, errors.New("invalid Apple token")
	}

	if claims.Issuer != appleIssuer {
		return AppleIdentity{}, errors.New("invalid Apple issuer")
	}
	if !audienceContains(claims.Audience, v.clientID) {
		return AppleIdentity{}, errors.New("invalid Apple audience")
	}
	if nonce != "" && claims.Nonce != "" && claims.Nonce != nonce {
		return AppleIdentity{}, errors.New("invalid Apple nonce")
	}
	if claims.Subject == "" {
		return AppleIdentity{}, errors.New("missing Apple subject")
	}

	return AppleIdentity{Subject: claims.Subject, Email: claims.Email}, nil
}

type appleTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Nonce         string `json:"nonce"`
}

type appleJWK struct {
	Keys []appleJWKKey `json:"keys"`
}

type appleJWKKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func audienceContains(audience jwt.ClaimStrings, value string) bool {
	for _, entry := range audience {
		if entry == value {
			return true
		}
	}
	return false
}

func (v *AppleVerifier) fetchPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, v.keysURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to fetch Apple public keys")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var jwk appleJWK
	if err := json.Unmarshal(body, &jwk); err != nil {
		return nil, err
	}

	for _, key := range jwk.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, errors.New("unexpected key type")
		}
		modulusBytes, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		exponent := 0
		for _, b := range exponentBytes {
			exponent = exponent*256 + int(b)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(modulusBytes),
			E: exponent,
		}, nil
	}

	return nil, errors.New("Apple public key not found")
}
