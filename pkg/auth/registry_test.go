package auth

import (
	"encoding/json"
	"errors"
	"testing"
)

type mockValidator struct{}

func (m *mockValidator) Validate(token string) (*Claims, error) {
	if token == "valid" {
		return &Claims{Subject: "test-user"}, nil
	}
	return nil, errors.New("invalid token")
}

func TestRegistry(t *testing.T) {
	RegisterProvider("mock", func(config json.RawMessage) (Validator, error) {
		return &mockValidator{}, nil
	})

	found := false
	for _, p := range ListProviders() {
		if p == "mock" {
			found = true
			break
		}
	}
	if !found {
		t.Error("mock provider not found in registry")
	}

	validator, err := NewValidator(ProviderConfig{Type: "mock", Config: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	claims, err := validator.Validate("valid")
	if err != nil {
		t.Fatalf("expected valid token: %v", err)
	}
	if claims.Subject != "test-user" {
		t.Errorf("expected subject 'test-user', got '%s'", claims.Subject)
	}

	if _, err = validator.Validate("invalid"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	_, err := NewValidator(ProviderConfig{Type: "unknown", Config: json.RawMessage(`{}`)})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
