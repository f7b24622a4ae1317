package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the session credential validity window.
const TokenTTL = 7 * 24 * time.Hour

// Identity is the payload encoded into a session credential.
type Identity struct {
	UserID    int
	CompanyID int
	IsOwner   bool
	Email     string
}

// VerificationState tags the outcome of verifying a credential, so callers
// can log "expired" and "malformed" distinctly instead of conflating them.
type VerificationState int

const (
	StateValid VerificationState = iota
	StateExpired
	StateBadSignature
	StateMalformed
)

func (s VerificationState) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateBadSignature:
		return "bad_signature"
	default:
		return "malformed"
	}
}

// Verification is the total result of VerifyToken. Identity is non-nil
// only when State is StateValid.
type Verification struct {
	State    VerificationState
	Identity *Identity
}

func (v Verification) Valid() bool {
	return v.State == StateValid && v.Identity != nil
}

// CreateToken produces a signed, time-bounded credential for the identity.
// Pure encoding, no side effects.
func CreateToken(id Identity, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    id.UserID,
		"company_id": id.CompanyID,
		"is_owner":   id.IsOwner,
		"email":      id.Email,
		"exp":        now.Add(TokenTTL).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken validates signature and expiry. It is a total function: any
// input maps to a Verification, never an error or a panic. Valid unexpired
// tokens deterministically yield the identity they were issued with.
func VerifyToken(tokenStr, secret string) Verification {
	if tokenStr == "" {
		return Verification{State: StateMalformed}
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Verification{State: StateExpired}
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return Verification{State: StateBadSignature}
		default:
			return Verification{State: StateMalformed}
		}
	}
	if !token.Valid {
		return Verification{State: StateMalformed}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Verification{State: StateMalformed}
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Verification{State: StateMalformed}
	}
	companyID, _ := claims["company_id"].(float64)
	isOwner, _ := claims["is_owner"].(bool)
	email, _ := claims["email"].(string)

	return Verification{
		State: StateValid,
		Identity: &Identity{
			UserID:    int(userID),
			CompanyID: int(companyID),
			IsOwner:   isOwner,
			Email:     email,
		},
	}
}
