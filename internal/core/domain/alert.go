package domain

import (
	"fmt"
	"time"
)

// AlertKind classifies an alert.
type AlertKind string

// Alert kinds.
const (
	AlertRestock   AlertKind = "restock"
	AlertPriceDrop AlertKind = "price_drop"
	AlertPriceRise AlertKind = "price_rise"
	AlertTargetMet AlertKind = "target_met"
)

// String returns the string representation.
func (k AlertKind) String() string {
	return string(k)
}

// Alert is a notification raised while reconciling one product.
type Alert struct {
	Kind AlertKind

	// ProductURL is the tracked product's URL as stored in the ledger.
	ProductURL  string
	ProductName string

	OldPrice  float64
	NewPrice  float64
	OldStatus StockStatus
	NewStatus StockStatus

	// ChangePercent is the absolute relative price change, 0.06 for 6%.
	ChangePercent float64

	// Message is the fully formed text handed to notification sinks.
	Message string

	RaisedAt time.Time
}

// AlertPolicy holds the thresholds the reconciler applies.
type AlertPolicy struct {
	// DropThreshold is the minimum relative drop that raises PriceDrop.
	DropThreshold float64

	// NotifyPriceRises enables PriceRise alerts.
	NotifyPriceRises bool

	// RiseThreshold is the minimum relative rise that raises PriceRise.
	RiseThreshold float64
}

// DefaultAlertPolicy alerts on drops of 5% or more and never on rises.
func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{
		DropThreshold:    0.05,
		NotifyPriceRises: false,
		RiseThreshold:    0.05,
	}
}

// FormatPrice renders a price the way alert messages show it.
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// RestockMessage builds the text of a restock alert.
func RestockMessage(p *Product, price float64) string {
	msg := fmt.Sprintf("🚨 **RESTOCK ALERT!**\n**%s** is back in stock!", p.DisplayName())
	if price > 0 {
		msg += "\nPrice: " + FormatPrice(price)
	}
	return msg + fmt.Sprintf("\n[Buy Now](%s)", p.URL)
}

// PriceDropMessage builds the text of a price drop alert.
func PriceDropMessage(p *Product, oldPrice, newPrice, change float64) string {
	return fmt.Sprintf("📉 **PRICE DROP!**\n**%s** dropped %.1f%% from %s to **%s**!\n[Link](%s)",
		p.DisplayName(), change*100, FormatPrice(oldPrice), FormatPrice(newPrice), p.URL)
}

// PriceRiseMessage builds the text of a price rise alert.
func PriceRiseMessage(p *Product, oldPrice, newPrice, change float64) string {
	return fmt.Sprintf("📈 **PRICE RISE**\n**%s** rose %.1f%% from %s to **%s**.\n[Link](%s)",
		p.DisplayName(), change*100, FormatPrice(oldPrice), FormatPrice(newPrice), p.URL)
}

// TargetMetMessage builds the text of a target price alert.
func TargetMetMessage(p *Product, price float64) string {
	return fmt.Sprintf("🎯 **TARGET PRICE HIT!**\n**%s** is now **%s** (target %s).\n[Link](%s)",
		p.DisplayName(), FormatPrice(price), FormatPrice(p.TargetPrice), p.URL)
}
