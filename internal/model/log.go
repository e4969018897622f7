package model

import "time"

// Action classifies an audit log entry.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSystem Action = "system"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionUpdate, ActionDelete, ActionSystem:
		return true
	}
	return false
}

// ActionLog is one audit trail entry. Entries are never edited.
type ActionLog struct {
	ID          string    `gorm:"primaryKey;size:64"  json:"id"`
	Date        time.Time `gorm:"not null;index"      json:"date"`
	Action      Action    `gorm:"size:16;not null"    json:"action"`
	Description string    `gorm:"type:text;not null"  json:"description"`
	ProductName *string   `gorm:"size:255"            json:"productName,omitempty"`
}

func (ActionLog) TableName() string { return "logs" }

func (l ActionLog) PrimaryKey() string { return l.ID }
