// ABOUTME: Data models for Kin entities
// ABOUTME: Defines Project, User, Person, Interaction, Reminder, Campaign and recipient structs
package models

import (
	"encoding/json"
)

// All timestamps are Unix epoch seconds, which is also the wire format.

type Project struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

type Session struct {
	ID        string `json:"id"`
	UserID    int64  `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
	RevokedAt *int64 `json:"revoked_at,omitempty"`
}

type Person struct {
	ID            int64           `json:"id"`
	ProjectID     int64           `json:"project_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Company       string          `json:"company,omitempty"`
	Role          string          `json:"role,omitempty"`
	ManagerName   string          `json:"manager_name,omitempty"`
	Location      string          `json:"location,omitempty"`
	Tags          string          `json:"tags,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	FrequencyDays *int            `json:"frequency_days"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`

	// Derived at query time, never stored.
	LastInteraction *int64      `json:"last_interaction"`
	Health          HealthState `json:"health,omitempty"`
}

// PersonDetail is a person together with their interaction log and reminders.
type PersonDetail struct {
	Person
	Interactions []Interaction `json:"interactions"`
	Reminders    []Reminder    `json:"reminders"`
}

type Interaction struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	PersonID  int64  `json:"person_id"`
	Type      string `json:"type"`
	Summary   string `json:"summary,omitempty"`
	Date      int64  `json:"date"`
	CreatedAt int64  `json:"created_at"`
}

type Reminder struct {
	ID         int64  `json:"id"`
	ProjectID  int64  `json:"project_id"`
	PersonID   int64  `json:"person_id"`
	PersonName string `json:"person_name,omitempty"`
	Title      string `json:"title"`
	DueDate    *int64 `json:"due_date"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

type Campaign struct {
	ID              int64               `json:"id"`
	ProjectID       int64               `json:"project_id"`
	Title           string              `json:"title"`
	SubjectTemplate string              `json:"subject_template"`
	BodyTemplate    string              `json:"body_template"`
	Status          string              `json:"status"`
	CreatedAt       int64               `json:"created_at"`
	UpdatedAt       int64               `json:"updated_at"`
	Recipients      []CampaignRecipient `json:"recipients,omitempty"`
}

type CampaignRecipient struct {
	CampaignID int64  `json:"campaign_id"`
	PersonID   int64  `json:"person_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Status     string `json:"status"`
	SentAt     *int64 `json:"sent_at"`
}

// Dashboard is the home view aggregate. Field names follow the front-end contract.
type Dashboard struct {
	Reminders   []Reminder `json:"reminders"`
	StalePeople []Person   `json:"stalePeople"`
}

// DefaultProjectID is used when a request does not select a project.
const DefaultProjectID int64 = 1

// InteractionType constants.
const (
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMeeting = "meeting"
	InteractionText    = "text"
	InteractionOther   = "other"
)

// Reminder status constants.
const (
	ReminderPending = "pending"
	ReminderDone    = "done"
)

// Campaign status constants.
const (
	CampaignOpen      = "open"
	CampaignCompleted = "completed"
	CampaignArchived  = "archived"
)

// Recipient status constants.
const (
	RecipientPending = "pending"
	RecipientSent    = "sent"
)

func IsValidInteractionType(t string) bool {
	switch t {
	case InteractionCall, InteractionEmail, InteractionMeeting, InteractionText, InteractionOther:
		return true
	}
	return false
}

func IsValidReminderStatus(s string) bool {
	return s == ReminderPending || s == ReminderDone
}

func IsValidCampaignStatus(s string) bool {
	switch s {
	case CampaignOpen, CampaignCompleted, CampaignArchived:
		return true
	}
	return false
}
