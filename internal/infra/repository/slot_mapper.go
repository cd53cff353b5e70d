package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/models"
)

// Metadata keys carried by the host schema.
const (
	MetaDuration           = "duration"
	MetaNotes              = "notes"
	MetaMeetingType        = "meetingType"
	MetaMeetingTitle       = "meetingTitle"
	MetaMeetingDescription = "meetingDescription"
	MetaIsRecurring        = "isRecurring"
	MetaRecurrenceRule     = "recurrenceRule"
	MetaInterviewerID      = "interviewerId"
)

// SlotRowMapper converts between the engine's Slot and the host-owned row.
// The owner is passed in so the row is always written inside its scope.
type SlotRowMapper interface {
	ToRow(s slot.Slot, ownerID uint) (models.AvailabilitySlot, error)
	FromRow(row models.AvailabilitySlot) slot.Slot
}

type DefaultSlotMapper struct{}

func (DefaultSlotMapper) ToRow(s slot.Slot, ownerID uint) (models.AvailabilitySlot, error) {
	date, err := time.Parse(slot.DateLayout, s.Date)
	if err != nil {
		return models.AvailabilitySlot{}, fmt.Errorf("invalid date %q: %w", s.Date, err)
	}

	row := models.AvailabilitySlot{
		Date:      date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,

		SlotDuration:       s.DurationMinutes(),
		MeetingType:        metaString(s.Metadata, MetaMeetingType),
		MeetingTitle:       metaString(s.Metadata, MetaMeetingTitle),
		MeetingDescription: metaString(s.Metadata, MetaMeetingDescription),
		IsRecurring:        metaBool(s.Metadata, MetaIsRecurring),
		RecurrenceRule:     metaString(s.Metadata, MetaRecurrenceRule),
		AdminNotes:         metaString(s.Metadata, MetaNotes),
	}

	if id, ok := parseRowID(s.ID); ok {
		row.ID = id
	}
	if d, ok := metaInt(s.Metadata, MetaDuration); ok && d > 0 {
		row.SlotDuration = d
	}

	row.InterviewerID = ownerID
	if ownerID == 0 {
		if id, ok := metaInt(s.Metadata, MetaInterviewerID); ok && id > 0 {
			row.InterviewerID = uint(id)
		}
	}

	return row, nil
}

func (DefaultSlotMapper) FromRow(row models.AvailabilitySlot) slot.Slot {
	meta := slot.Metadata{
		MetaDuration:      row.SlotDuration,
		MetaInterviewerID: row.InterviewerID,
	}

	putString := func(key, v string) {
		if v != "" {
			meta[key] = v
		}
	}
	putString(MetaNotes, row.AdminNotes)
	putString(MetaMeetingType, row.MeetingType)
	putString(MetaMeetingTitle, row.MeetingTitle)
	putString(MetaMeetingDescription, row.MeetingDescription)
	putString(MetaRecurrenceRule, row.RecurrenceRule)
	if row.IsRecurring {
		meta[MetaIsRecurring] = true
	}

	return slot.Slot{
		ID:        strconv.FormatUint(uint64(row.ID), 10),
		Date:      row.Date.UTC().Format(slot.DateLayout),
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		Metadata:  meta,
	}
}

// parseRowID accepts only positive decimal ids; anything else cannot name
// a row of the host table.
func parseRowID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func metaString(m slot.Metadata, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func metaBool(m slot.Metadata, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// metaInt accepts the numeric shapes metadata arrives in (Go ints, JSON
// float64, numeric strings).
func metaInt(m slot.Metadata, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

var _ SlotRowMapper = DefaultSlotMapper{}
