package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, "User registered successfully", map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("expected success true, got %v", body["success"])
	}
	if _, ok := body["errors"]; !ok || body["errors"] != nil {
		t.Fatalf("expected errors to be present and null, got %v", body["errors"])
	}
	if body["object"].(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body["object"])
	}
}

func TestWritePaginated(t *testing.T) {
	w := httptest.NewRecorder()
	WritePaginated(w, "Products retrieved", []string{"a", "b"}, pagination.Page{Number: 2, Size: 2, TotalSize: 5})

	var body types.PaginatedEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode paginated envelope: %v", err)
	}
	if !body.Success || body.PageNumber != 2 || body.PageSize != 2 || body.TotalSize != 5 || body.TotalPages != 3 {
		t.Fatalf("unexpected page metadata %+v", body)
	}
}

func TestWriteErrorListsFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").
		WithDetails([]string{"username must be alphanumeric", "email must be a valid email"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Success {
		t.Fatalf("expected success false")
	}
	if len(body.Errors) != 2 {
		t.Fatalf("expected two field errors, got %v", body.Errors)
	}
}

func TestWriteErrorUsesTypedMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials"))

	var body types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if w.Code != http.StatusUnauthorized || body.Message != "Invalid credentials" {
		t.Fatalf("unexpected response %d %+v", w.Code, body)
	}
	if len(body.Errors) != 1 || body.Errors[0] != "Invalid credentials" {
		t.Fatalf("expected single error entry, got %v", body.Errors)
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("pq: connection refused"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Message != "Something went wrong" {
		t.Fatalf("expected generic message, got %q", body.Message)
	}
	if len(body.Errors) != 1 || body.Errors[0] != "Something went wrong" {
		t.Fatalf("internal error leaked: %v", body.Errors)
	}
}
