package models

import "time"

// AvailabilitySlot is the host application's row for an interviewer's
// availability. Only Date/StartTime/EndTime are interpreted by the engine;
// the rest travels as slot metadata.
type AvailabilitySlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InterviewerID uint `gorm:"index:idx_availability_owner_date,priority:1" json:"interviewer_id"`

	Date      time.Time `gorm:"type:date;not null;index:idx_availability_owner_date,priority:2" json:"date"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time"` // HH:MM
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time"`   // HH:MM

	SlotDuration int `gorm:"default:30" json:"slot_duration"`

	MeetingType        string `gorm:"size:50" json:"meeting_type"`
	MeetingTitle       string `gorm:"size:255" json:"meeting_title"`
	MeetingDescription string `gorm:"type:text" json:"meeting_description"`

	// armazenado como texto, não é expandido
	IsRecurring    bool   `gorm:"default:false" json:"is_recurring"`
	RecurrenceRule string `gorm:"size:255" json:"recurrence_rule"`

	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
