package pending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

// Watcher kicks members whose captcha expired unsolved.
//
// Each scheduled captcha gets its own goroutine that sleeps until the
// deadline and rechecks the store. The goroutine takes everything it needs
// by value at schedule time and shares no state with its caller.
type Watcher struct {
	store *Store
	http  func(guildID model.Snowflake) *cache.CacheHTTP
	log   *zap.SugaredLogger
}

// NewWatcher creates a captcha expiry watcher. The http callback builds a
// permission-checked request client for the given guild.
func NewWatcher(store *Store, http func(guildID model.Snowflake) *cache.CacheHTTP, log *zap.SugaredLogger) *Watcher {
	return &Watcher{store: store, http: http, log: log}
}

// Schedule arms a compensator for the captcha. When the deadline passes and
// the entry is still pending, the member is kicked with the given audit
// reason; exactly one kick attempt is made, with no retry. The goroutine
// exits early when ctx is canceled.
func (w *Watcher) Schedule(ctx context.Context, captcha *PendingCaptcha, reason string) {
	go w.watch(ctx, *captcha, reason)
}

func (w *Watcher) watch(ctx context.Context, captcha PendingCaptcha, reason string) {
	timer := time.NewTimer(time.Until(captcha.ExpiresAt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	current, err := w.store.GetCaptcha(ctx, captcha.GuildID, captcha.MemberID)
	if err != nil {
		w.log.Errorw("Failed to recheck pending captcha.",
			"guild", captcha.GuildID, "member", captcha.MemberID, "error", err)
		return
	}

	// Consumed by a successful validation, or re-inserted with a later
	// deadline that owns its own compensator.
	if current == nil || current.ExpiresAt.After(captcha.ExpiresAt) {
		return
	}

	kick, err := w.http(captcha.GuildID).RemoveGuildMember(ctx, captcha.MemberID)
	if err != nil {
		w.log.Warnw("Skipping captcha kick.",
			"guild", captcha.GuildID, "member", captcha.MemberID, "error", err)
		return
	}
	if err := kick.Reason(reason).Exec(); err != nil {
		w.log.Errorw("Failed to kick member with expired captcha.",
			"guild", captcha.GuildID, "member", captcha.MemberID, "error", err)
		return
	}

	if err := w.store.DeleteCaptcha(ctx, captcha.GuildID, captcha.MemberID); err != nil {
		w.log.Errorw("Failed to delete expired captcha.",
			"guild", captcha.GuildID, "member", captcha.MemberID, "error", err)
	}
}
