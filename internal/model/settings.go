package model

// SettingsID is the fixed key of the single settings record.
const SettingsID = 1

// DefaultWarningThresholdDays is used until the operator changes it.
const DefaultWarningThresholdDays = 7

// AppSettings holds operator preferences. Exactly one record exists once
// the engine has started.
type AppSettings struct {
	ID                   int `gorm:"primaryKey;autoIncrement:false" json:"id"`
	WarningThresholdDays int `gorm:"not null"                       json:"warningThresholdDays" validate:"gte=0"`
}

func (AppSettings) TableName() string { return "settings" }

// DefaultSettings returns the record persisted on first start.
func DefaultSettings() AppSettings {
	return AppSettings{ID: SettingsID, WarningThresholdDays: DefaultWarningThresholdDays}
}

func (s AppSettings) PrimaryKey() int { return s.ID }
