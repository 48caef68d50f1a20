package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/findmypaw/backend/internal/mail"
	"github.com/findmypaw/backend/internal/models"
	"gorm.io/gorm"
)

const dispatchBatchSize = 50

// NotificationDispatcher delivers outbox rows written by the claim workflow.
// A failed delivery is recorded on the row and logged; it is not retried.
type NotificationDispatcher struct {
	db       *gorm.DB
	identity IdentityProvider
	mailer   mail.Mailer
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	wake    chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewNotificationDispatcher(db *gorm.DB, identity IdentityProvider, mailer mail.Mailer, interval time.Duration) *NotificationDispatcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &NotificationDispatcher{
		db:       db,
		identity: identity,
		mailer:   mailer,
		interval: interval,
		now:      time.Now,
		wake:     make(chan struct{}, 1),
	}
}

// Wake asks the loop to dispatch now instead of at the next tick.
func (d *NotificationDispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *NotificationDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})

	d.wg.Add(1)
	go d.loop(d.stop)
	slog.Info("notification dispatcher started", "interval", d.interval.String())
}

// Stop ends the loop and waits for an in-flight batch to finish.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stop)
	d.mu.Unlock()

	d.wg.Wait()
	slog.Info("notification dispatcher stopped")
}

func (d *NotificationDispatcher) loop(stop <-chan struct{}) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		case <-d.wake:
		}
		if _, _, err := d.DispatchPending(ctx); err != nil && ctx.Err() == nil {
			slog.Error("notification dispatch failed", "action", "notify.dispatch", "error", err)
		}
	}
}

// DispatchPending delivers up to one batch of pending notifications, oldest
// first, and reports how many were sent and how many failed.
func (d *NotificationDispatcher) DispatchPending(ctx context.Context) (sent, failed int, err error) {
	var pending []models.Notification
	if err := d.db.WithContext(ctx).
		Where("status = ?", models.NotificationPending).
		Order("created_at ASC").
		Limit(dispatchBatchSize).
		Find(&pending).Error; err != nil {
		return 0, 0, storageErr("load pending notifications", err)
	}

	for i := range pending {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}

		n := &pending[i]
		deliveryErr := d.deliver(ctx, n)
		// The outcome is recorded even if Stop cancelled ctx mid-send, or the
		// row stays pending and the email goes out again after a restart.
		if err := d.record(context.WithoutCancel(ctx), n, deliveryErr); err != nil {
			return sent, failed, err
		}
		if deliveryErr != nil {
			failed++
			slog.Error("claim notification not delivered",
				"claim_id", n.ClaimID.String(),
				"report_id", n.ReportID.String(),
				"user_id", n.RecipientID.String(),
				"action", "notify.claim_filed",
				"error", deliveryErr,
			)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n *models.Notification) error {
	to, err := d.identity.EmailFor(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if to == "" {
		return fmt.Errorf("recipient %s has no email address", n.RecipientID)
	}
	return d.mailer.Send(ctx, renderNotification(to, n))
}

func (d *NotificationDispatcher) record(ctx context.Context, n *models.Notification, deliveryErr error) error {
	updates := map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
	}
	if deliveryErr != nil {
		updates["status"] = models.NotificationFailed
		updates["last_error"] = deliveryErr.Error()
	} else {
		updates["status"] = models.NotificationSent
		updates["sent_at"] = d.now()
	}

	err := d.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND status = ?", n.ID, models.NotificationPending).
		Updates(updates).Error
	if err != nil {
		return storageErr("record notification outcome", err)
	}
	return nil
}

func renderNotification(to string, n *models.Notification) mail.Message {
	body := fmt.Sprintf(`<p>Hello,</p>
<p>Someone submitted a claim for your report <b>%s</b>.</p>
<p><b>Remark:</b> %s</p>
<p><img src="%s" alt="Claim proof" width="200"/></p>`,
		html.EscapeString(n.ReportID.String()),
		html.EscapeString(n.Remark),
		html.EscapeString(n.ImageURL),
	)
	return mail.Message{
		To:      to,
		Subject: "Someone responded to your pet report 🐾",
		HTML:    body,
	}
}
