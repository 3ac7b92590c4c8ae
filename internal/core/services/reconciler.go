package services

import (
	"math"
	"time"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
	"github.com/custodia-labs/stockwatch/internal/logger"
)

// Reconciler merges observation batches into a ledger and raises alerts.
// It performs no I/O and holds no state between calls.
type Reconciler struct {
	policy domain.AlertPolicy
}

// NewReconciler creates a reconciler applying the given alert policy.
func NewReconciler(policy domain.AlertPolicy) *Reconciler {
	return &Reconciler{policy: policy}
}

// Policy returns the alert policy in use.
func (r *Reconciler) Policy() domain.AlertPolicy {
	return r.policy
}

// Reconcile applies batch to ledger in place and returns the raised alerts
// and counts. now is the pass time used for history keys and alert stamps.
//
// Observations with an unknown status are skipped before anything else.
// When several observations share a key, the last one in the batch wins and
// the others count as skipped. Observations for untracked products count as
// unmatched and raise nothing.
func (r *Reconciler) Reconcile(
	ledger *domain.Ledger,
	batch []domain.ObservedListing,
	now time.Time,
) domain.ReconcileResult {
	var result domain.ReconcileResult

	keys := make([]string, len(batch))
	winner := make(map[string]int, len(batch))
	for i := range batch {
		if !batch[i].Status.IsKnown() {
			result.Skipped++
			continue
		}
		keys[i] = ledger.Key(batch[i].URL)
		if _, dup := winner[keys[i]]; dup {
			result.Skipped++
		}
		winner[keys[i]] = i
	}

	for i := range batch {
		key := keys[i]
		if !batch[i].Status.IsKnown() || winner[key] != i {
			continue
		}

		p, ok := ledger.Get(key)
		if !ok {
			result.Unmatched++
			logger.Debug("Untracked listing %s", batch[i].URL)
			continue
		}
		result.Processed++

		updated, alerts := r.apply(p, batch[i], now)
		result.Alerts = append(result.Alerts, alerts...)

		if !productChanged(p, updated) {
			continue
		}
		if err := ledger.Update(key, updated); err != nil {
			logger.Warn("Update %s: %v", key, err)
			continue
		}
		result.Changed = append(result.Changed, key)
	}

	return result
}

// apply computes the new state of p after observation o and the alerts the
// transition raises.
func (r *Reconciler) apply(p domain.Product, o domain.ObservedListing, now time.Time) (domain.Product, []domain.Alert) {
	oldPrice, oldStatus := p.LastPrice, p.LastStatus
	price, known := o.KnownPrice()

	updated := p.Clone()
	if o.Name != "" {
		updated.Name = o.Name
	}
	if o.Image != "" {
		updated.Image = domain.NormalizeImageURL(o.Image)
	}
	if known {
		updated.LastPrice = price
	}
	updated.LastStatus = o.Status

	priceChanged := known && price != oldPrice
	if priceChanged || o.Status != oldStatus {
		if updated.LastPrice > 0 {
			history, err := updated.History.Record(now, updated.LastPrice)
			if err != nil {
				logger.Warn("History for %s: %v", p.URL, err)
			} else {
				updated.History = history
			}
		}
	}

	var alerts []domain.Alert
	raise := func(kind domain.AlertKind, newPrice, change float64, message string) {
		alerts = append(alerts, domain.Alert{
			Kind:          kind,
			ProductURL:    p.URL,
			ProductName:   updated.Name,
			OldPrice:      oldPrice,
			NewPrice:      newPrice,
			OldStatus:     oldStatus,
			NewStatus:     o.Status,
			ChangePercent: change,
			Message:       message,
			RaisedAt:      now,
		})
		logger.Debug("Alert %s for %s", kind, p.URL)
	}

	if p.NotifyRestock && oldStatus == domain.StatusOutOfStock && o.Status == domain.StatusInStock {
		raise(domain.AlertRestock, updated.LastPrice, 0, domain.RestockMessage(&updated, updated.LastPrice))
	}

	if known && oldPrice > 0 {
		change := math.Abs(price-oldPrice) / oldPrice
		switch {
		case price < oldPrice && change >= r.policy.DropThreshold:
			raise(domain.AlertPriceDrop, price, change, domain.PriceDropMessage(&updated, oldPrice, price, change))
		case price > oldPrice && r.policy.NotifyPriceRises && change >= r.policy.RiseThreshold:
			raise(domain.AlertPriceRise, price, change, domain.PriceRiseMessage(&updated, oldPrice, price, change))
		}
	}

	if known && p.TargetMet(price) && !p.TargetMet(oldPrice) {
		raise(domain.AlertTargetMet, price, 0, domain.TargetMetMessage(&updated, price))
	}

	return updated, alerts
}

// productChanged reports whether reconciliation altered any stored field.
func productChanged(before, after domain.Product) bool {
	if before.Name != after.Name || before.Image != after.Image ||
		before.LastPrice != after.LastPrice || before.LastStatus != after.LastStatus ||
		len(before.History) != len(after.History) {
		return true
	}
	for i := range before.History {
		if before.History[i] != after.History[i] {
			return true
		}
	}
	return false
}
