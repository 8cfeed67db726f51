package sanity

import (
	"encoding/json"
	"strconv"

	"orderdesk/orders"
)

// orderDoc mirrors the projection. Sanity documents are schemaless, so
// numeric fields sometimes arrive as strings and image as an object.
type orderDoc struct {
	ID        string          `json:"_id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Company   string          `json:"company"`
	Country   string          `json:"country"`
	City      string          `json:"city"`
	Address1  string          `json:"address1"`
	Address2  string          `json:"address2"`
	Phone     json.RawMessage `json:"phone"`
	ZipCode   json.RawMessage `json:"zipCode"`
	Total     json.RawMessage `json:"total"`
	Discount  json.RawMessage `json:"discount"`
	Status    *string         `json:"status"`
	OrderDate string          `json:"orderDate"`
	CartItems []*cartItemDoc  `json:"cartItems"`
}

type cartItemDoc struct {
	Name  string          `json:"name"`
	Image json.RawMessage `json:"image"`
}

type imageField struct {
	Asset struct {
		Ref string `json:"_ref"`
	} `json:"asset"`
}

func (d orderDoc) toOrder() orders.Order {
	o := orders.Order{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Company:   d.Company,
		Country:   d.Country,
		City:      d.City,
		Address1:  d.Address1,
		Address2:  d.Address2,
		Phone:     int64(number(d.Phone)),
		ZipCode:   text(d.ZipCode),
		Total:     number(d.Total),
		Discount:  number(d.Discount),
		OrderDate: d.OrderDate,
		CartItems: make([]orders.CartItem, 0, len(d.CartItems)),
	}
	// Unknown strings are kept out of the enum; the row then reads as absent.
	if d.Status != nil {
		if st, err := orders.ParseStatus(*d.Status); err == nil {
			o.Status = &st
		}
	}
	for _, it := range d.CartItems {
		// A dangling reference dereferences to null.
		if it == nil {
			continue
		}
		o.CartItems = append(o.CartItems, orders.CartItem{Name: it.Name, Image: imageRef(it.Image)})
	}
	return o
}

func number(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		f, _ = strconv.ParseFloat(s, 64)
	}
	return f
}

func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// imageRef accepts either an image object ({asset: {_ref}}) or a bare string.
func imageRef(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var img imageField
	if json.Unmarshal(raw, &img) == nil && img.Asset.Ref != "" {
		return img.Asset.Ref
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}
