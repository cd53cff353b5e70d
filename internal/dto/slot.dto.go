package dto

import "github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"

// Field checks belong to the domain validator so failures come back
// tagged; binding only rejects malformed JSON.
type CreateSlotRequest struct {
	Date      string         `json:"date"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Metadata  map[string]any `json:"metadata"`
}

func (r CreateSlotRequest) Input() slot.CreateInput {
	return slot.CreateInput{
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Metadata:  r.Metadata,
	}
}

type BatchSlotRequest struct {
	Slots []CreateSlotRequest `json:"slots" binding:"required"`
}

func (r BatchSlotRequest) Inputs() []slot.CreateInput {
	out := make([]slot.CreateInput, 0, len(r.Slots))
	for _, s := range r.Slots {
		out = append(out, s.Input())
	}
	return out
}

type AvailabilityResponse struct {
	Date             string           `json:"date"`
	Windows          []slot.TimeRange `json:"windows"`
	AvailableMinutes int              `json:"available_minutes"`
}

type CheckResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

type DeletedResponse struct {
	Date    string `json:"date"`
	Deleted int    `json:"deleted"`
}
