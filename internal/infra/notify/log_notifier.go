package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogNotifier records borrower notices in the structured log. It stands in
// for the mail/SMS channel owned by the surrounding system; delivery is
// best-effort and never fails the caller.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, borrowerID uuid.UUID, message string) {
	slog.InfoContext(ctx, "borrower notice",
		"borrower_id", borrowerID.String(),
		"message", message)
}
