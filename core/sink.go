package core

import (
	"log/slog"
	"sort"

	"dropchain/core/events"
	"dropchain/observability"
	"dropchain/observability/logging"
)

// eventSink receives committed events only.
type eventSink struct {
	logger *slog.Logger
}

func (s eventSink) Emit(e events.Event) {
	if e == nil {
		return
	}
	record := e.Record()
	observability.Events().Record(record.Type)
	if s.logger == nil {
		return
	}
	keys := make([]string, 0, len(record.Attributes))
	for k := range record.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)+1)
	args = append(args, slog.String("event", record.Type))
	for _, k := range keys {
		args = append(args, logging.MaskField(k, record.Attributes[k]))
	}
	s.logger.Info("event committed", args...)
}
