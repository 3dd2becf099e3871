package cart

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// record is the JSON shape shared with every reader and writer of the slot:
// {id, name, unitPrice, qty, image} with numeric unitPrice and qty.
type record struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	UnitPrice json.Number `json:"unitPrice"`
	Qty       json.Number `json:"qty"`
	Image     string      `json:"image"`
}

// Encode serializes the list into the slot wire format. A nil list encodes as [].
func Encode(items []LineItem) ([]byte, error) {
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, record{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: json.Number(item.UnitPrice.String()),
			Qty:       json.Number(strconv.Itoa(item.Quantity)),
			Image:     item.Image,
		})
	}
	return json.Marshal(records)
}

// maxQuantity bounds a decoded qty; larger values are treated as invalid.
const maxQuantity = 1_000_000

// looseRecord accepts any JSON value per field so that one malformed record
// cannot fail the whole list.
type looseRecord struct {
	ID        json.RawMessage `json:"id"`
	Name      json.RawMessage `json:"name"`
	UnitPrice json.RawMessage `json:"unitPrice"`
	Qty       json.RawMessage `json:"qty"`
	Image     json.RawMessage `json:"image"`
}

// Decode parses the slot wire format. Only a payload that is not a JSON array
// is an error. A record that is not an object, or whose price or quantity is
// not a usable number, decodes with zero values so that it is filtered as absent.
func Decode(data []byte) ([]LineItem, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(raws))
	for _, raw := range raws {
		var rec looseRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			items = append(items, LineItem{})
			continue
		}
		items = append(items, LineItem{
			ID:        parseText(rec.ID),
			Name:      parseText(rec.Name),
			UnitPrice: parseAmount(rec.UnitPrice),
			Quantity:  parseQuantity(rec.Qty),
			Image:     parseText(rec.Image),
		})
	}
	return items, nil
}

func parseText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	var n json.Number
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseAmount(raw json.RawMessage) decimal.Decimal {
	d, _ := parseNumber(raw)
	return d
}

func parseQuantity(raw json.RawMessage) int {
	d, ok := parseNumber(raw)
	if !ok || !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(maxQuantity)) {
		return 0
	}
	return int(d.IntPart())
}
