// ABOUTME: Tests for Kin data models
// ABOUTME: Validates enum helpers, validation errors and the wire shape of derived fields
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestIsValidInteractionType(t *testing.T) {
	for _, typ := range []string{"call", "email", "meeting", "text", "other"} {
		if !IsValidInteractionType(typ) {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	for _, typ := range []string{"", "message", "EMAIL"} {
		if IsValidInteractionType(typ) {
			t.Errorf("expected %q to be invalid", typ)
		}
	}
}

func TestIsValidReminderStatus(t *testing.T) {
	if !IsValidReminderStatus(ReminderPending) || !IsValidReminderStatus(ReminderDone) {
		t.Error("pending and done must be valid")
	}
	if IsValidReminderStatus("archived") {
		t.Error("archived is not a reminder status")
	}
}

func TestIsValidCampaignStatus(t *testing.T) {
	for _, s := range []string{CampaignOpen, CampaignCompleted, CampaignArchived} {
		if !IsValidCampaignStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidCampaignStatus("sent") {
		t.Error("sent is a recipient status, not a campaign status")
	}
}

func TestValidationError(t *testing.T) {
	err := Invalid("name", "is required")
	if err.Error() != "name: is required" {
		t.Errorf("unexpected message %q", err.Error())
	}

	wrapped := fmt.Errorf("create person: %w", err)
	if !IsValidation(wrapped) {
		t.Error("wrapped validation error not detected")
	}
	if IsValidation(ErrNotFound) {
		t.Error("not found is not a validation error")
	}

	whole := &ValidationError{Message: "invalid request body"}
	if whole.Error() != "invalid request body" {
		t.Errorf("unexpected message %q", whole.Error())
	}
}

func TestNotFoundWrapping(t *testing.T) {
	err := fmt.Errorf("get reminder 7: %w", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected wrapped ErrNotFound")
	}
}

func TestPersonJSONKeepsNullCadence(t *testing.T) {
	p := Person{ID: 1, Name: "Grace"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if v, ok := decoded["frequency_days"]; !ok || v != nil {
		t.Errorf("expected frequency_days to be present and null, got %v", v)
	}
	if v, ok := decoded["last_interaction"]; !ok || v != nil {
		t.Errorf("expected last_interaction to be present and null, got %v", v)
	}
	if _, ok := decoded["password_hash"]; ok {
		t.Error("unexpected password_hash key")
	}
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Email: "a@example.com", PasswordHash: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"id":1,"email":"a@example.com","created_at":0}` {
		t.Errorf("unexpected JSON %s", data)
	}
}
