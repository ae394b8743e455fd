package rest

import (
	"fmt"
	"net/http"
	"net/mail"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const problemTitle = "One or more validation errors occurred."

// Problem is the body returned when request fields fail validation.
type Problem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

func newProblem(errs map[string][]string) *Problem {
	return &Problem{Title: problemTitle, Status: http.StatusBadRequest, Errors: errs}
}

type fieldCheck struct {
	name     string
	value    string
	maxLen   int
	isEmail  bool
	required bool
}

func check(fields ...fieldCheck) *Problem {
	errs := make(map[string][]string)
	for _, f := range fields {
		if f.required && f.value == "" {
			errs[f.name] = append(errs[f.name], fmt.Sprintf("The %s field is required.", f.name))
			continue
		}
		if f.maxLen > 0 && utf8.RuneCountInString(f.value) > f.maxLen {
			errs[f.name] = append(errs[f.name],
				fmt.Sprintf("The field %s must be a string with a maximum length of %d.", f.name, f.maxLen))
		}
		if f.isEmail && f.value != "" {
			if _, err := mail.ParseAddress(f.value); err != nil {
				errs[f.name] = append(errs[f.name], fmt.Sprintf("The %s field is not a valid e-mail address.", f.name))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return newProblem(errs)
}

func validateRegister(req services.RegisterRequest) *Problem {
	return check(
		fieldCheck{name: "UserName", value: req.UserName, maxLen: 50, required: true},
		fieldCheck{name: "Email", value: req.Email, maxLen: 128, isEmail: true, required: true},
		fieldCheck{name: "Password", value: req.Password, maxLen: password.MaxPasswordBytes, required: true},
		fieldCheck{name: "FirstName", value: req.FirstName, maxLen: 100, required: true},
		fieldCheck{name: "LastName", value: req.LastName, maxLen: 100, required: true},
	)
}

func validateLogin(req services.LoginRequest) *Problem {
	return check(
		fieldCheck{name: "Email", value: req.Email, isEmail: true, required: true},
		fieldCheck{name: "Password", value: req.Password, required: true},
	)
}

func validateAssignRole(req services.AssignRoleRequest) *Problem {
	return check(
		fieldCheck{name: "UserId", value: req.UserID, required: true},
		fieldCheck{name: "Role", value: req.Role, required: true},
	)
}
