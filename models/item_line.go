package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemLine is the denormalized item snapshot embedded in kitchen orders
// and bills. It is a value type owned by its parent record.
type ItemLine struct {
	ItemName string  `json:"item_name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type ItemLines []ItemLine

func (l ItemLines) Subtotal() float64 {
	var sum float64
	for _, it := range l {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

func (l ItemLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *ItemLines) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = ItemLines{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported item list column type %T", value)
	}
}
