package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	id, name, email string
}

func (u testUser) GetID() string       { return u.id }
func (u testUser) GetUserName() string { return u.name }
func (u testUser) GetEmail() string    { return u.email }

var alice = testUser{id: "0b6f9a5e-uid", name: "alice", email: "alice@example.com"}

func TestBuildClaims_Order(t *testing.T) {
	custom := []Claim{{Type: "department", Value: "ops"}, {Type: "tenant", Value: "acme"}}

	claims := BuildClaims(alice, custom, []string{"User", "Admin"})

	require.Len(t, claims, 8)
	assert.Equal(t, Claim{ClaimSubject, "alice"}, claims[0])
	assert.Equal(t, Claim{ClaimEmail, "alice@example.com"}, claims[1])
	assert.Equal(t, ClaimTokenID, claims[2].Type)
	assert.Equal(t, Claim{ClaimUserID, "0b6f9a5e-uid"}, claims[3])
	assert.Equal(t, custom, claims[4:6])
	assert.Equal(t, []Claim{{ClaimRoles, "User"}, {ClaimRoles, "Admin"}}, claims[6:])
}

func TestBuildClaims_TokenIDIsFreshUUID(t *testing.T) {
	a := BuildClaims(alice, nil, nil)
	b := BuildClaims(alice, nil, nil)

	_, err := uuid.Parse(a[2].Value)
	require.NoError(t, err)
	assert.NotEqual(t, a[2].Value, b[2].Value)
}

func TestBuildClaims_NoRoleDeduplication(t *testing.T) {
	claims := BuildClaims(alice, nil, []string{"User", "User", "Admin"})

	assert.Equal(t, []string{"User", "User", "Admin"}, ValuesOf(claims, ClaimRoles))
}

func TestBuildClaims_NoRolesNoCustom(t *testing.T) {
	claims := BuildClaims(alice, nil, nil)

	assert.Len(t, claims, 4)
	assert.Empty(t, ValuesOf(claims, ClaimRoles))
}

func TestBuildClaims_CustomCannotShadowBuiltins(t *testing.T) {
	custom := []Claim{
		{Type: ClaimSubject, Value: "mallory"},
		{Type: "tenant", Value: "acme"},
		{Type: ClaimUserID, Value: "other"},
		{Type: ClaimEmail, Value: "m@example.com"},
		{Type: ClaimTokenID, Value: "fixed"},
	}

	claims := BuildClaims(alice, custom, nil)

	require.Len(t, claims, 5)
	assert.Equal(t, []string{"alice"}, ValuesOf(claims, ClaimSubject))
	assert.Equal(t, []string{"alice@example.com"}, ValuesOf(claims, ClaimEmail))
	assert.Equal(t, []string{"0b6f9a5e-uid"}, ValuesOf(claims, ClaimUserID))
	assert.NotEqual(t, "fixed", ValuesOf(claims, ClaimTokenID)[0])
	assert.Equal(t, Claim{"tenant", "acme"}, claims[4])
}
