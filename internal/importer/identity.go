package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/guttosm/carteirapulse/internal/domain/models"
)

// BuildOperationID derives the content-addressed identifier of an operation:
// the hex-encoded SHA-256 of its defining fields joined by a fixed separator,
// with the date truncated to a UTC day.
//
// The id doubles as the persistence key, which makes re-importing the same
// statement idempotent. Two distinct real-world events sharing date, kind,
// ticker, quantity, and total value are indistinguishable and intentionally
// collapse into one — an accepted approximation given the available fields.
func BuildOperationID(date time.Time, kind models.OperationKind, ticker string, quantity, totalValue float64) string {
	base := strings.Join([]string{
		FormatDateKey(date),
		string(kind),
		ticker,
		formatAmount(quantity),
		formatAmount(totalValue),
	}, "-")

	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// AttachOperationID promotes a draft to a full Operation with its identity.
func AttachOperationID(draft models.OperationDraft) models.Operation {
	id := BuildOperationID(draft.Date, draft.Kind, draft.Ticker, draft.Quantity, draft.TotalValue)
	return draft.WithID(id)
}
