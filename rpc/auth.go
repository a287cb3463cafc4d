package rpc

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"seedswap/crypto"
)

// authenticator resolves the caller address from an HMAC-signed bearer token.
// The address travels in the sub claim as bech32 or 0x hex.
type authenticator struct {
	secret    []byte
	issuer    string
	clockSkew time.Duration
}

func newAuthenticator(secret, issuer string) *authenticator {
	return &authenticator{
		secret:    []byte(strings.TrimSpace(secret)),
		issuer:    strings.TrimSpace(issuer),
		clockSkew: 2 * time.Minute,
	}
}

func (a *authenticator) authenticate(r *http.Request) ([20]byte, *RPCError) {
	var caller [20]byte
	if len(a.secret) == 0 {
		return caller, &RPCError{Code: codeUnauthorized, Message: "RPC authentication secret not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return caller, &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	token := extractBearer(header)
	if token == "" {
		return caller, &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	claims, err := a.parseToken(token)
	if err != nil {
		return caller, &RPCError{Code: codeUnauthorized, Message: "invalid token", Data: err.Error()}
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return caller, &RPCError{Code: codeUnauthorized, Message: "token subject required"}
	}
	caller, err = crypto.ParseAddress(subject)
	if err != nil {
		return caller, &RPCError{Code: codeUnauthorized, Message: "token subject is not an address", Data: err.Error()}
	}
	return caller, nil
}

func (a *authenticator) parseToken(tokenString string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithLeeway(a.clockSkew)}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims not map")
	}
	return claims, nil
}

// IssueToken signs a token that authenticates as caller until ttl elapses.
// It is used by seedctl and tests.
func IssueToken(secret, issuer string, caller [20]byte, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("secret required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  crypto.FormatAddress(caller),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if issuer != "" {
		claims.Issuer = issuer
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strings.TrimSpace(secret)))
}

func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
