package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/go-chi/chi/v5"
)

type signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"short","passwordConfirm":"other"}`))
	var dest signup
	err := DecodeJSONBody(req, &dest)

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	for _, field := range []string{"email", "password", "passwordConfirm"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("missing detail for %s in %v", field, details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com","admin":true}`))
	var dest struct {
		Email string `json:"email"`
	}
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeOptionalJSONBodyAcceptsEmptyBody(t *testing.T) {
	var dest struct {
		GearID int64 `json:"gearId" validate:"omitempty,gt=0"`
	}
	if err := DecodeOptionalJSONBody(httptest.NewRequest(http.MethodPost, "/", nil), &dest); err != nil {
		t.Fatalf("expected empty body to pass, got %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"gearId":-1}`))
	if err := DecodeOptionalJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONSkipsValidateTags(t *testing.T) {
	var dest struct {
		Title string `json:"title" validate:"required"`
	}
	if err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), &dest); err != nil {
		t.Fatalf("expected no validation, got %v", err)
	}
}

func withParam(key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPathID(t *testing.T) {
	id, err := PathID(withParam("gearId", "42"), "gearId")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	for _, raw := range []string{"", "0", "-3", "abc"} {
		if _, err := PathID(withParam("gearId", raw), "gearId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
}
