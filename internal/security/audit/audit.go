package audit

import (
	"log/slog"
	"time"
)

// Logger records privileged actions (verifications, workflow mediation) as
// structured audit entries.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates an audit logger
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// LogAction records an action against a resource.
func (al *Logger) LogAction(actorID, action, resource, resourceID, status string) {
	al.logger.Info("audit",
		slog.String("actor_id", actorID),
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

// LogVerification records an admin verifying a user or property.
func (al *Logger) LogVerification(adminID, resource, resourceID, status string) {
	al.LogAction(adminID, "verify", resource, resourceID, status)
}

// LogMediation records an admin connecting or completing a rental request.
func (al *Logger) LogMediation(adminID, action, requestID, status string) {
	al.LogAction(adminID, action, "request", requestID, status)
}
