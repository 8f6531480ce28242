package jwtmw

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer はClerkと同じ形式(RS256, sub=Clerk ID)のトークンを発行します。
// ローカル開発とテストで、Clerkを介さずに保護されたルートを呼び出すために使います。
type Signer struct {
	key        *rsa.PrivateKey
	expiration time.Duration
}

// NewSigner はPEM形式のRSA秘密鍵からSignerを生成します。
func NewSigner(privateKeyPEM string, expiration time.Duration) (*Signer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	return NewSignerFromKey(key, expiration), nil
}

// NewSignerFromKey は読み込み済みの秘密鍵からSignerを生成します。
func NewSignerFromKey(key *rsa.PrivateKey, expiration time.Duration) *Signer {
	return &Signer{key: key, expiration: expiration}
}

// Sign はclerkIDをsubに持つ署名済みトークンを生成します。
func (s *Signer) Sign(clerkID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   clerkID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
