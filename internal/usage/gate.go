package usage

import (
	"context"
	"fmt"
	"time"

	"fantasy-ai/backend/internal/model"
)

// GuestCounter reads a guest's per-character send counter.
type GuestCounter interface {
	LoadCount(ctx context.Context, deviceID string, characterID int64) (int, error)
}

// AccountCounter reads the subscription flag and sent-message counts of an account.
type AccountCounter interface {
	IsSubscribed(ctx context.Context, userID string) (bool, error)
	CountUserMessages(ctx context.Context, userID string, since time.Time) (int, error)
}

// Gate loads fresh counters for every send attempt and evaluates them.
// Nothing is cached between calls.
type Gate struct {
	guest   GuestCounter
	account AccountCounter
	limits  Limits
	loc     *time.Location
	now     func() time.Time
}

func NewGate(guest GuestCounter, account AccountCounter, limits Limits, loc *time.Location) *Gate {
	if loc == nil {
		loc = time.Local
	}
	return &Gate{guest: guest, account: account, limits: limits, loc: loc, now: time.Now}
}

// Counters returns the counter relevant to the caller's current tier.
func (g *Gate) Counters(ctx context.Context, id model.Identity, characterID int64) (model.UsageCounters, error) {
	if id.Guest {
		n, err := g.guest.LoadCount(ctx, id.DeviceID, characterID)
		if err != nil {
			return model.UsageCounters{}, fmt.Errorf("failed to load guest counter: %w", err)
		}
		return model.UsageCounters{Tier: model.TierGuest, Count: n, Limit: g.limits.Guest}, nil
	}

	subscribed, err := g.account.IsSubscribed(ctx, id.UserID)
	if err != nil {
		return model.UsageCounters{}, fmt.Errorf("failed to load subscription status: %w", err)
	}
	tier := TierFor(false, subscribed)

	var since time.Time
	if tier == model.TierSubscribed {
		since = StartOfDay(g.now(), g.loc)
	}
	n, err := g.account.CountUserMessages(ctx, id.UserID, since)
	if err != nil {
		return model.UsageCounters{}, fmt.Errorf("failed to count sent messages: %w", err)
	}
	return model.UsageCounters{Tier: tier, Count: n, Limit: g.limits.LimitFor(tier)}, nil
}

// Check decides whether the caller may send one more message to characterID.
func (g *Gate) Check(ctx context.Context, id model.Identity, characterID int64) (Decision, error) {
	counters, err := g.Counters(ctx, id, characterID)
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(counters.Tier, counters.Count, g.limits), nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
