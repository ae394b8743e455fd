package auth

import "github.com/google/uuid"

// Claim types written into every token.
const (
	ClaimSubject = "sub"
	ClaimEmail   = "email"
	ClaimTokenID = "jti"
	ClaimUserID  = "uid"
	ClaimRoles   = "roles"
)

// builtinTypes are written once per token by BuildClaims; custom claims of
// these types are dropped.
var builtinTypes = map[string]struct{}{
	ClaimSubject: {}, ClaimEmail: {}, ClaimTokenID: {}, ClaimUserID: {},
}

// Claim is a typed assertion about the token subject. Several claims may
// share a type.
type Claim struct {
	Type  string
	Value string
}

// UserIdentity is the part of a user the claims are derived from.
type UserIdentity interface {
	GetID() string
	GetUserName() string
	GetEmail() string
}

// BuildClaims assembles the claim sequence for a token in fixed order:
// subject, email, a fresh token id, user id, the custom claims, then one
// roles claim per role. Roles are not deduplicated. Custom claims may not
// reuse the built-in types.
func BuildClaims(user UserIdentity, custom []Claim, roles []string) []Claim {
	claims := make([]Claim, 0, 4+len(custom)+len(roles))
	claims = append(claims,
		Claim{Type: ClaimSubject, Value: user.GetUserName()},
		Claim{Type: ClaimEmail, Value: user.GetEmail()},
		Claim{Type: ClaimTokenID, Value: uuid.NewString()},
		Claim{Type: ClaimUserID, Value: user.GetID()},
	)
	for _, c := range custom {
		if _, builtin := builtinTypes[c.Type]; builtin {
			continue
		}
		claims = append(claims, c)
	}
	for _, role := range roles {
		claims = append(claims, Claim{Type: ClaimRoles, Value: role})
	}
	return claims
}

// ValuesOf returns the values of all claims of the given type, in order.
func ValuesOf(claims []Claim, claimType string) []string {
	var out []string
	for _, c := range claims {
		if c.Type == claimType {
			out = append(out, c.Value)
		}
	}
	return out
}
