package orders

import "time"

// Order is a customer purchase as projected out of the document store.
type Order struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Company   string     `json:"company"`
	Country   string     `json:"country"`
	City      string     `json:"city"`
	Address1  string     `json:"address1"`
	Address2  string     `json:"address2"`
	Phone     int64      `json:"phone"`
	ZipCode   string     `json:"zipCode"`
	Total     float64    `json:"total"`
	Discount  float64    `json:"discount"`
	Status    *Status    `json:"status"`
	OrderDate string     `json:"orderDate"`
	CartItems []CartItem `json:"cartItems"`
}

// CartItem is a dereferenced cart reference. Image is an opaque asset ref.
type CartItem struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CustomerName joins first and last name.
func (o Order) CustomerName() string {
	switch {
	case o.FirstName == "":
		return o.LastName
	case o.LastName == "":
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

// DisplayStatus is the status shown in the edit control; absent reads as pending.
func (o Order) DisplayStatus() Status {
	if o.Status == nil {
		return StatusPending
	}
	return *o.Status
}

// Date parses OrderDate, trying the layouts document stores commonly emit.
func (o Order) Date() (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, o.OrderDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WithStatus returns a copy of o carrying s. CartItems is shared.
func (o Order) WithStatus(s Status) Order {
	o.Status = &s
	return o
}
