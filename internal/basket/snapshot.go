package basket

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/pkg/pricing"
	"github.com/google/uuid"
)

// Source says which copy of the cart a snapshot came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Snapshot is a priced copy of one user's cart. ClearedAt is only known
// for the database copy and is not cached.
type Snapshot struct {
	BasketID  uuid.UUID          `json:"basket_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Lines     []pricing.CartLine `json:"lines"`
	UpdatedAt time.Time          `json:"updated_at"`
	ClearedAt *time.Time         `json:"-"`
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// predates reports whether the snapshot was taken before the basket was
// last cleared.
func (s Snapshot) predates(cleared *time.Time) bool {
	return cleared != nil && !s.UpdatedAt.After(*cleared)
}

// Reconcile picks the cart to show after loading both copies: the remote
// basket wins when it has lines, otherwise the local cache is used unless
// it predates the remote basket's last clear.
func Reconcile(remote, local Snapshot) (Snapshot, Source) {
	if !remote.Empty() {
		return remote, SourceRemote
	}
	if !local.Empty() && !local.predates(remote.ClearedAt) {
		return local, SourceLocal
	}
	return remote, SourceRemote
}
