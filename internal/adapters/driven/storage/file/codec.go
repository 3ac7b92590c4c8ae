package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// productRecord is the on-disk shape of a product.
type productRecord struct {
	URL           string        `json:"url"`
	Name          string        `json:"name"`
	Image         string        `json:"image"`
	TargetPrice   float64       `json:"target_price"`
	LastPrice     float64       `json:"last_price"`
	LastStatus    string        `json:"last_status"`
	NotifyRestock bool          `json:"notify_restock"`
	History       historyRecord `json:"history"`
}

// historyRecord is a JSON object keyed by "2006-01-02 15:04" with keys in
// time order.
type historyRecord domain.PriceHistory

func toRecord(p domain.Product) productRecord {
	status := p.LastStatus
	if status == "" {
		status = domain.StatusUnknown
	}
	return productRecord{
		URL:           p.URL,
		Name:          p.Name,
		Image:         p.Image,
		TargetPrice:   p.TargetPrice,
		LastPrice:     p.LastPrice,
		LastStatus:    status.String(),
		NotifyRestock: p.NotifyRestock,
		History:       historyRecord(p.History),
	}
}

func fromRecord(r productRecord) domain.Product {
	return domain.Product{
		URL:           r.URL,
		Name:          r.Name,
		Image:         r.Image,
		TargetPrice:   r.TargetPrice,
		LastPrice:     r.LastPrice,
		LastStatus:    domain.ParseStockStatus(r.LastStatus),
		NotifyRestock: r.NotifyRestock,
		History:       domain.PriceHistory(r.History),
	}
}

// MarshalJSON writes history entries as an object in time order.
func (h historyRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.At.UTC().Format(domain.HistoryKeyLayout))
		if err != nil {
			return nil, err
		}
		price, err := json.Marshal(p.Price)
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", p.At.Format(domain.HistoryKeyLayout), err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(price)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads history entries in document order and rejects keys
// that do not strictly increase.
func (h *historyRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*h = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("history: expected object, got %v", tok)
	}

	var out domain.PriceHistory
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		at, err := time.Parse(domain.HistoryKeyLayout, key)
		if err != nil {
			return fmt.Errorf("history key %q: %w", key, err)
		}

		var price float64
		if err := dec.Decode(&price); err != nil {
			return fmt.Errorf("history %q: %w", key, err)
		}
		out = append(out, domain.PricePoint{At: at, Price: price})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	if err := out.Validate(); err != nil {
		return err
	}
	*h = historyRecord(out)
	return nil
}

// encodeLedger renders products as an indented JSON array.
func encodeLedger(products []domain.Product) ([]byte, error) {
	records := make([]productRecord, len(products))
	for i, p := range products {
		records[i] = toRecord(p)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeLedger parses a ledger document.
func decodeLedger(data []byte) ([]domain.Product, error) {
	var records []productRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	products := make([]domain.Product, len(records))
	for i, r := range records {
		products[i] = fromRecord(r)
	}
	return products, nil
}
