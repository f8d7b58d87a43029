package logger

import (
	"log/slog"
)

// Error records err under "error". Nil errors yield an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Domain records the lifecycle domain under "domain".
func Domain(name string) slog.Attr {
	return slog.String("domain", name)
}

// ResourceID records the resource identifier under "resource_id".
// Nil ids yield an empty Attr.
func ResourceID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("resource_id", id)
}

// Transition groups the attempted old and new states under "transition".
func Transition(from, to string) slog.Attr {
	return slog.Group("transition",
		slog.String("from", from),
		slog.String("to", to),
	)
}

// Verdict records a validation outcome under "verdict".
func Verdict(v string) slog.Attr {
	return slog.String("verdict", v)
}

// Step records a workflow step name under "step".
func Step(name string) slog.Attr {
	return slog.String("step", name)
}

// Duration records a duration under "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
