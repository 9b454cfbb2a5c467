package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"github.com/apex/log"
)

const complaintUpdatedTitle = "Complaint Updated"

// AnalyticsSource supplies the figures pushed after a scan that saw changes.
type AnalyticsSource interface {
	Analytics(communityID string) models.Analytics
}

// Notifier turns complaints that changed since the previous scan into
// bus events and notifications.
type Notifier struct {
	mu        sync.Mutex
	feed      ChangeFeed
	bus       *Bus
	center    *Center
	analytics AnalyticsSource
	watermark time.Time
	primed    bool
}

func NewNotifier(feed ChangeFeed, bus *Bus, center *Center) *Notifier {
	return &Notifier{feed: feed, bus: bus, center: center}
}

// SetAnalyticsSource enables the analytics-update broadcast.
func (n *Notifier) SetAnalyticsSource(a AnalyticsSource) {
	n.analytics = a
}

// Watermark returns the newest UpdatedAt observed by a completed scan.
func (n *Notifier) Watermark() (time.Time, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.watermark, n.primed
}

// StatusMessage is the notification text for a complaint in its current status.
func StatusMessage(c models.Complaint) string {
	switch c.Status {
	case models.StatusInProgress:
		return fmt.Sprintf("Your complaint \"%s\" is now being processed", c.Title)
	case models.StatusOnHold:
		return fmt.Sprintf("Your complaint \"%s\" is on hold", c.Title)
	case models.StatusResolved:
		return fmt.Sprintf("Your complaint \"%s\" has been resolved!", c.Title)
	default:
		return fmt.Sprintf("Complaint \"%s\" has been updated", c.Title)
	}
}

// Scan runs one polling cycle and returns the complaints it reported. The
// first scan only establishes the watermark. The watermark follows the
// snapshot the feed read, not the wall clock, so a write that lands while a
// scan is in flight is reported exactly once by a later scan. A feed error
// leaves the watermark where it was.
func (n *Notifier) Scan() ([]models.Complaint, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.primed {
		_, latest, err := n.feed.Changed(time.Time{})
		if err != nil {
			return nil, fmt.Errorf("prime change feed: %w", err)
		}
		n.watermark = latest
		n.primed = true
		return nil, nil
	}

	changed, latest, err := n.feed.Changed(n.watermark)
	if err != nil {
		return nil, fmt.Errorf("read change feed: %w", err)
	}

	for _, c := range changed {
		n.publish(c)
	}
	if len(changed) > 0 && n.analytics != nil {
		n.bus.AnalyticsUpdate.Emit(n.analytics.Analytics(""))
	}

	n.watermark = latest
	return changed, nil
}

func (n *Notifier) publish(c models.Complaint) {
	typ := models.NotificationInfo
	if c.Status == models.StatusResolved {
		typ = models.NotificationSuccess
	}
	n.center.CreateFor(c.UserID, typ, complaintUpdatedTitle, StatusMessage(c), map[string]any{"complaintId": c.ID})

	n.bus.ComplaintUpdated.Emit(c)
	if c.UserID != "" {
		n.bus.UserComplaints(c.UserID).Emit(c)
	}
}

// Run scans every interval until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("Change notifier polling every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("Change notifier stopped")
			return
		case <-ticker.C:
			changed, err := n.Scan()
			if err != nil {
				log.WithError(err).Warn("change scan failed")
				continue
			}
			if len(changed) > 0 {
				log.Infof("Change notifier reported %d updated complaint(s)", len(changed))
			}
		}
	}
}
