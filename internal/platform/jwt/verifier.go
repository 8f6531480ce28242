// Package jwtmw はClerkのセッショントークン(RS256)の検証とGinミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject はトークンにsubクレームが含まれていない場合に返されます。
var ErrMissingSubject = errors.New("token has no subject")

// Verifier はClerkが発行したセッショントークンを公開鍵で検証します。
type Verifier struct {
	parser *jwt.Parser
	key    any
}

// NewVerifier はPEM形式のRSA公開鍵からVerifierを生成します。
// leewayはexp/nbfの検証で許容する時計のずれです。
func NewVerifier(publicKeyPEM string, leeway time.Duration) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse clerk public key: %w", err)
	}
	return &Verifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(leeway),
		),
		key: key,
	}, nil
}

// Subject は署名と有効期限を検証し、subクレーム(Clerk ID)を返します。
func (v *Verifier) Subject(tokenStr string) (string, error) {
	token, err := v.parser.Parse(tokenStr, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}
