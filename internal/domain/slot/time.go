package slot

import "fmt"

// Granularidade da agenda: todo horário é múltiplo de IntervalMinutes.
const (
	IntervalMinutes  = 30
	IntervalsPerHour = 60 / IntervalMinutes
	IntervalsPerDay  = 24 * IntervalsPerHour
)

const (
	TimeLayout = "15:04"
	DateLayout = "2006-01-02"
)

// TimeToIndex converts an aligned "HH:MM" into its interval index.
// Callers must validate the format first.
func TimeToIndex(hm string) int {
	return minutesOf(hm) / IntervalMinutes
}

// IndexToTime converts an interval index back to "HH:MM". Index
// IntervalsPerDay yields "24:00", the end-of-day sentinel.
func IndexToTime(index int) string {
	return MinutesToTime(index * IntervalMinutes)
}

func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func minutesOf(hm string) int {
	if len(hm) < 5 {
		return 0
	}
	h := int(hm[0]-'0')*10 + int(hm[1]-'0')
	m := int(hm[3]-'0')*10 + int(hm[4]-'0')
	return h*60 + m
}
