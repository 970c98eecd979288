package dto

import (
	"time"

	"github.com/pursuepayments/invoicechase/pkg/domain"
)

// StoredSettings is a settings row as persisted: the preference fields plus
// the scheduling cursor and the consecutive-failure counter that belong to
// that row. A nil *StoredSettings means no row exists at that level.
type StoredSettings struct {
	domain.Settings
	ReminderNextDate *time.Time
	FailureCount     int
}
