package domain

import (
	"regexp"
	"strings"
)

// Field limits mirror the persisted schema constraints.
const (
	maxUserNameLen    = 50
	minPasswordLen    = 6
	maxSweetNameLen   = 100
	maxCategoryLen    = 50
	maxDescriptionLen = 500
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

// Violation describes a single failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every constraint violated by an entity. It is
// returned before any store mutation is attempted.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return strings.Join(msgs, "; ")
}

// ValidateNewUser checks registration input. The email is expected to be
// normalized already.
func ValidateNewUser(name, email, password string) error {
	var vs []Violation
	if strings.TrimSpace(name) == "" {
		vs = append(vs, Violation{Field: "name", Message: "is required"})
	} else if len(name) > maxUserNameLen {
		vs = append(vs, Violation{Field: "name", Message: "cannot be more than 50 characters"})
	}
	if email == "" {
		vs = append(vs, Violation{Field: "email", Message: "is required"})
	} else if !emailPattern.MatchString(email) {
		vs = append(vs, Violation{Field: "email", Message: "must be a valid email"})
	}
	if password == "" {
		vs = append(vs, Violation{Field: "password", Message: "is required"})
	} else if len(password) < minPasswordLen {
		vs = append(vs, Violation{Field: "password", Message: "must be at least 6 characters"})
	}
	if len(vs) > 0 {
		return &ValidationError{Violations: vs}
	}
	return nil
}

// Validate checks the catalog item constraints.
func (s *Sweet) Validate() error {
	var vs []Violation
	if strings.TrimSpace(s.Name) == "" {
		vs = append(vs, Violation{Field: "name", Message: "is required"})
	} else if len(s.Name) > maxSweetNameLen {
		vs = append(vs, Violation{Field: "name", Message: "cannot be more than 100 characters"})
	}
	if strings.TrimSpace(s.Category) == "" {
		vs = append(vs, Violation{Field: "category", Message: "is required"})
	} else if len(s.Category) > maxCategoryLen {
		vs = append(vs, Violation{Field: "category", Message: "cannot be more than 50 characters"})
	}
	if s.Price < 0 {
		vs = append(vs, Violation{Field: "price", Message: "cannot be negative"})
	}
	if s.Quantity < 0 {
		vs = append(vs, Violation{Field: "quantity", Message: "cannot be negative"})
	}
	if len(s.Description) > maxDescriptionLen {
		vs = append(vs, Violation{Field: "description", Message: "cannot be more than 500 characters"})
	}
	if len(vs) > 0 {
		return &ValidationError{Violations: vs}
	}
	return nil
}
