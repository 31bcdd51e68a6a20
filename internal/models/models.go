package models

import (
	"time"
)

// Well-known keys of the console's durable local storage.
const (
	SettingToken          = "token"
	SettingUser           = "user"
	SettingSelectedTenant = "selectedTenantId"
)

// ConsoleSetting is one key/value entry of a console session's local storage
type ConsoleSetting struct {
	SessionID string    `gorm:"primaryKey;type:varchar(64)" json:"session_id"`
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ConsoleSetting) TableName() string {
	return "console_settings"
}

// Mutation outcomes recorded in the journal
const (
	OutcomeApplied   = "applied"
	OutcomeConfirmed = "confirmed"
	OutcomeReverted  = "reverted"
	OutcomeDropped   = "dropped"
)

// MutationLog is an append-only record of an optimistic change and how it settled
type MutationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"index;type:varchar(64)" json:"session_id"`
	Entity    string    `gorm:"type:varchar(50)" json:"entity"`
	EntityID  string    `gorm:"index;type:varchar(255)" json:"entity_id"`
	Field     string    `gorm:"type:varchar(50)" json:"field"`
	Outcome   string    `gorm:"type:varchar(20)" json:"outcome"`
	Error     string    `gorm:"type:text" json:"error"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MutationLog) TableName() string {
	return "mutation_logs"
}

// All lists every table the console migrates, in dependency order.
func All() []interface{} {
	return []interface{}{
		&ConsoleSetting{},
		&MutationLog{},
	}
}
