package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func codes(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

func TestPolicy_CheckPassword(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{name: "strong", password: "P@ssw0rd", want: []string{}},
		{name: "too short", password: "P@s0", want: []string{CodePasswordTooShort}},
		{name: "no symbol", password: "Passw0rd", want: []string{CodePasswordRequiresNonAlp}},
		{name: "no digit", password: "P@ssword", want: []string{CodePasswordRequiresDigit}},
		{name: "no lower", password: "P@SSW0RD", want: []string{CodePasswordRequiresLower}},
		{name: "no upper", password: "p@ssw0rd", want: []string{CodePasswordRequiresUpper}},
		{name: "short in characters", password: "éA1!a", want: []string{CodePasswordTooShort}},
		{name: "six multibyte characters", password: "éA1!aé", want: []string{}},
		{name: "at byte limit", password: "P@ssw0rd" + strings.Repeat("a", 64), want: []string{}},
		{name: "over byte limit", password: "P@ssw0rd" + strings.Repeat("a", 65), want: []string{CodePasswordTooLong}},
		{name: "multibyte over byte limit", password: "P@ssw0rd" + strings.Repeat("é", 40), want: []string{CodePasswordTooLong}},
		{
			name:     "empty",
			password: "",
			want: []string{
				CodePasswordTooShort, CodePasswordRequiresNonAlp, CodePasswordRequiresDigit,
				CodePasswordRequiresLower, CodePasswordRequiresUpper, CodePasswordRequiresUnique,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(p.CheckPassword(tt.password)))
		})
	}
}

func TestPolicy_CheckPassword_Descriptions(t *testing.T) {
	vs := DefaultPolicy().CheckPassword("abc")

	assert.Equal(t, "Passwords must be at least 6 characters.", vs[0].Description)
	assert.Equal(t, "Passwords must have at least one non alphanumeric character.", vs[1].Description)
}

func TestPolicy_CheckPassword_UniqueChars(t *testing.T) {
	p := Policy{RequiredUniqueChars: 3}

	assert.Equal(t, []string{CodePasswordRequiresUnique}, codes(p.CheckPassword("aaaaaa")))
	assert.Empty(t, p.CheckPassword("abcabc"))
}

func TestPolicy_CheckUser(t *testing.T) {
	p := DefaultPolicy()

	assert.Empty(t, p.CheckUser("alice.smith+ops@corp", "alice@example.com"))
	assert.Equal(t, []string{CodeInvalidUserName}, codes(p.CheckUser("alice smith", "alice@example.com")))
	assert.Equal(t, []string{CodeInvalidUserName}, codes(p.CheckUser("", "alice@example.com")))
	assert.Equal(t, []string{CodeInvalidEmail}, codes(p.CheckUser("alice", "not-an-email")))
	assert.Equal(t, []string{CodeInvalidEmail}, codes(p.CheckUser("alice", "Alice <alice@example.com>")))

	vs := p.CheckUser("bad name", "x")
	assert.Equal(t, "Username 'bad name' is invalid, can only contain letters or digits.", vs[0].Description)
	assert.Equal(t, "Email 'x' is invalid.", vs[1].Description)
}

func TestPolicy_CheckPassword_NoUpperBoundWhenUnset(t *testing.T) {
	p := Policy{RequiredLength: 1}

	assert.Empty(t, p.CheckPassword(strings.Repeat("a", 200)))
}
