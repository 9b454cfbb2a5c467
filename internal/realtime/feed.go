package realtime

import (
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
)

// ChangeFeed produces the complaints modified after a point in time,
// together with the newest UpdatedAt in the snapshot it read (never earlier
// than since). Callers resume from that mark so nothing written after the
// snapshot is skipped.
type ChangeFeed interface {
	Changed(since time.Time) ([]models.Complaint, time.Time, error)
}

// StorageFeed reads the persisted complaint collection. It sees writes made
// by any process sharing the same backend.
type StorageFeed struct {
	kv storage.KV
}

func NewStorageFeed(kv storage.KV) *StorageFeed {
	return &StorageFeed{kv: kv}
}

// Changed returns complaints whose UpdatedAt is strictly after since.
func (f *StorageFeed) Changed(since time.Time) ([]models.Complaint, time.Time, error) {
	var changed []models.Complaint
	latest := since
	for _, c := range storage.Load(f.kv, config.KeyComplaints, []models.Complaint{}) {
		if c.UpdatedAt.After(since) {
			changed = append(changed, c)
		}
		if c.UpdatedAt.After(latest) {
			latest = c.UpdatedAt
		}
	}
	return changed, latest, nil
}
