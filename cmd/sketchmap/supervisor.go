package main

import (
	"log/slog"

	"github.com/thejerf/suture/v4"
)

func newSupervisor(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: eventHook,
	})
}

func eventHook(ei suture.Event) {
	switch e := ei.(type) {
	case suture.EventStopTimeout:
		slog.Info("Service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
	case suture.EventServicePanic:
		slog.Warn("Caught a service panic", "panic", e.PanicMsg)
		slog.Debug(e.Stacktrace)
	case suture.EventServiceTerminate:
		slog.Error("Service failed", "error", e.Err, "supervisor", e.SupervisorName, "service", e.ServiceName)
	case suture.EventBackoff:
		slog.Debug("Too many service failures, backing off", "supervisor", e.SupervisorName)
	case suture.EventResume:
		slog.Debug("Exiting backoff state", "supervisor", e.SupervisorName)
	default:
		slog.Warn("Unknown supervisor event", "type", int(e.Type()))
	}
}
