package validation

import (
	"errors"
	"strings"
	"testing"

	"bizcore/internal/apperr"
)

type signupForm struct {
	Name            string `validate:"required,min=2"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Role            string `validate:"omitempty,oneof=admin manager employee"`
}

func TestStructValid(t *testing.T) {
	f := signupForm{Name: "Ada", Email: "ada@example.com", Password: "longenough", ConfirmPassword: "longenough"}
	if err := Struct(f); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestStructAggregatesAllViolations(t *testing.T) {
	f := signupForm{Password: "longenough", ConfirmPassword: "longenough"}
	err := Struct(f)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if len(ae.Fields) != 2 {
		t.Fatalf("expected both missing fields reported, got %v", ae.Fields)
	}
	joined := strings.Join(ae.Fields, "; ")
	if !strings.Contains(joined, "name is required") || !strings.Contains(joined, "email is required") {
		t.Fatalf("unexpected messages: %v", ae.Fields)
	}
}

func TestStructFieldMessages(t *testing.T) {
	f := signupForm{Name: "A", Email: "nope", Password: "short", ConfirmPassword: "different", Role: "root"}
	err := Struct(f)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected typed error, got %v", err)
	}
	joined := strings.Join(ae.Fields, "; ")
	for _, want := range []string{
		"name must be at least 2 characters",
		"email must be a valid email address",
		"password must be at least 8 characters",
		"confirmpassword must match password",
		"role must be one of: admin manager employee",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, ae.Fields)
		}
	}
}
