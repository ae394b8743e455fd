package password

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Violation codes.
const (
	CodePasswordTooShort       = "PasswordTooShort"
	CodePasswordTooLong        = "PasswordTooLong"
	CodePasswordRequiresDigit  = "PasswordRequiresDigit"
	CodePasswordRequiresLower  = "PasswordRequiresLower"
	CodePasswordRequiresUpper  = "PasswordRequiresUpper"
	CodePasswordRequiresNonAlp = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresUnique = "PasswordRequiresUniqueChars"
	CodeInvalidUserName        = "InvalidUserName"
	CodeInvalidEmail           = "InvalidEmail"
	CodeDuplicateUserName      = "DuplicateUserName"
	CodeDuplicateEmail         = "DuplicateEmail"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// DefaultAllowedUserNameChars is the username alphabet accepted by default.
const DefaultAllowedUserNameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// Violation describes one reason an identity or password was rejected.
type Violation struct {
	Code        string
	Description string
}

// Policy holds the rules checked before an account is created.
type Policy struct {
	RequiredLength         int
	MaxBytes               int
	RequiredUniqueChars    int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
	AllowedUserNameChars   string
}

// DefaultPolicy returns the standard rules: six to MaxPasswordBytes long, with
// a digit, a lowercase letter, an uppercase letter and a symbol.
func DefaultPolicy() Policy {
	return Policy{
		RequiredLength:         6,
		MaxBytes:               MaxPasswordBytes,
		RequiredUniqueChars:    1,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
		AllowedUserNameChars:   DefaultAllowedUserNameChars,
	}
}

// CheckUser validates the username alphabet and the email syntax.
func (p Policy) CheckUser(userName, email string) []Violation {
	var out []Violation

	if userName == "" || (p.AllowedUserNameChars != "" && strings.Trim(userName, p.AllowedUserNameChars) != "") {
		out = append(out, Violation{
			Code:        CodeInvalidUserName,
			Description: fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", userName),
		})
	}

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		out = append(out, Violation{
			Code:        CodeInvalidEmail,
			Description: fmt.Sprintf("Email '%s' is invalid.", email),
		})
	}

	return out
}

// CheckPassword returns every rule the password breaks, in a stable order.
func (p Policy) CheckPassword(password string) []Violation {
	var out []Violation

	if utf8.RuneCountInString(password) < p.RequiredLength {
		out = append(out, Violation{
			Code:        CodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.RequiredLength),
		})
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		out = append(out, Violation{
			Code:        CodePasswordTooLong,
			Description: fmt.Sprintf("Passwords must be at most %d bytes long.", p.MaxBytes),
		})
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		unique[r] = struct{}{}
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSymbol = true
		}
	}

	if p.RequireNonAlphanumeric && !hasSymbol {
		out = append(out, Violation{Code: CodePasswordRequiresNonAlp, Description: "Passwords must have at least one non alphanumeric character."})
	}
	if p.RequireDigit && !hasDigit {
		out = append(out, Violation{Code: CodePasswordRequiresDigit, Description: "Passwords must have at least one digit ('0'-'9')."})
	}
	if p.RequireLowercase && !hasLower {
		out = append(out, Violation{Code: CodePasswordRequiresLower, Description: "Passwords must have at least one lowercase ('a'-'z')."})
	}
	if p.RequireUppercase && !hasUpper {
		out = append(out, Violation{Code: CodePasswordRequiresUpper, Description: "Passwords must have at least one uppercase ('A'-'Z')."})
	}
	if len(unique) < p.RequiredUniqueChars {
		out = append(out, Violation{
			Code:        CodePasswordRequiresUnique,
			Description: fmt.Sprintf("Passwords must use at least %d different characters.", p.RequiredUniqueChars),
		})
	}

	return out
}
