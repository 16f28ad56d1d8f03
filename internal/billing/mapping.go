package billing

import (
	organizationDatamodel "github.com/frahmantamala/beacon/internal/core/datamodel/organization"
	"github.com/stripe/stripe-go/v81"
)

// MapSubscriptionStatus folds Stripe's subscription states onto ours.
func MapSubscriptionStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive:
		return organizationDatamodel.StatusActive
	case stripe.SubscriptionStatusTrialing:
		return organizationDatamodel.StatusTrialing
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return organizationDatamodel.StatusPastDue
	case stripe.SubscriptionStatusCanceled:
		return organizationDatamodel.StatusCanceled
	default:
		return organizationDatamodel.StatusInactive
	}
}

// MapSubscriptionTier reads the plan from the first priced item. A price
// tagged tier=pro wins over the billing interval.
func MapSubscriptionTier(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil {
		return organizationDatamodel.TierFree
	}

	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil {
			continue
		}
		if item.Price.Metadata["tier"] == organizationDatamodel.TierPro {
			return organizationDatamodel.TierPro
		}
		if item.Price.Recurring != nil {
			switch item.Price.Recurring.Interval {
			case stripe.PriceRecurringIntervalMonth:
				return organizationDatamodel.TierMonthly
			case stripe.PriceRecurringIntervalYear:
				return organizationDatamodel.TierYearly
			}
		}
	}
	return organizationDatamodel.TierFree
}
