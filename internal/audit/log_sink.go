package audit

import "github.com/rs/zerolog"

// LogSink writes events to the application log, for backends without a
// host database to hold audit_logs.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

func (s *LogSink) Log(ev Event) error {
	e := s.log.Info().
		Str("action", ev.Action).
		Str("entity", ev.Entity).
		Str("entity_id", ev.EntityID).
		Interface("metadata", ev.Metadata)
	if ev.OwnerID != nil {
		e = e.Uint("owner_id", *ev.OwnerID)
	}
	e.Msg("audit")
	return nil
}

var _ Sink = (*LogSink)(nil)
