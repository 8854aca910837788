package usage

import (
	"fmt"

	"fantasy-ai/backend/internal/model"
)

const (
	ActionSubscribe = "subscribe"
	ActionLogin     = "login"
)

// Limits are the per-tier send allowances.
type Limits struct {
	// Guest is a lifetime allowance per character, counted on the device.
	Guest int
	// Free is a lifetime allowance across all characters.
	Free int
	// SubscribedDaily resets at the start of each day in the configured time zone.
	SubscribedDaily int
}

func DefaultLimits() Limits {
	return Limits{Guest: 3, Free: 3, SubscribedDaily: 50}
}

// Decision is the outcome of a usage check. Notice is set only when the send is denied.
type Decision struct {
	Allowed  bool                `json:"allowed"`
	Counters model.UsageCounters `json:"counters"`
	Notice   *model.LimitNotice  `json:"notice,omitempty"`
}

// TierFor picks the single tier that applies to a send.
func TierFor(isGuest, isSubscribed bool) model.Tier {
	switch {
	case isGuest:
		return model.TierGuest
	case isSubscribed:
		return model.TierSubscribed
	default:
		return model.TierFree
	}
}

// LimitFor returns the allowance of a tier.
func (l Limits) LimitFor(tier model.Tier) int {
	switch tier {
	case model.TierGuest:
		return l.Guest
	case model.TierSubscribed:
		return l.SubscribedDaily
	default:
		return l.Free
	}
}

// Evaluate decides whether one more send is allowed given the count of prior sends
// relevant to the tier. It has no side effects.
func Evaluate(tier model.Tier, priorCount int, limits Limits) Decision {
	limit := limits.LimitFor(tier)
	d := Decision{
		Allowed:  priorCount < limit,
		Counters: model.UsageCounters{Tier: tier, Count: priorCount, Limit: limit},
	}
	if d.Allowed {
		return d
	}

	switch tier {
	case model.TierGuest:
		d.Notice = &model.LimitNotice{
			Title:   "Message Limit Reached",
			Message: "You've reached the message limit for guest users. Please sign up or log in to continue chatting.",
			Action:  &model.NoticeAction{Label: "Sign Up / Log In", Action: ActionLogin},
		}
	case model.TierSubscribed:
		d.Notice = &model.LimitNotice{
			Title:   "Daily Limit Reached",
			Message: fmt.Sprintf("You have reached your %d-message limit for today. Please try again tomorrow.", limit),
		}
	default:
		d.Notice = &model.LimitNotice{
			Title:   "Subscription Required",
			Message: "You need to subscribe to send more messages.",
			Action:  &model.NoticeAction{Label: "Subscribe", Action: ActionSubscribe},
		}
	}
	return d
}
