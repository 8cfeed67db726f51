package fsdoc

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"

	"orderdesk/orders"
)

func orderFromData(id string, m map[string]any) (orders.Order, []*firestore.DocumentRef) {
	o := orders.Order{
		ID:        id,
		FirstName: asString(m["firstName"]),
		LastName:  asString(m["lastName"]),
		Email:     asString(m["email"]),
		Company:   asString(m["company"]),
		Country:   asString(m["country"]),
		City:      asString(m["city"]),
		Address1:  asString(m["address1"]),
		Address2:  asString(m["address2"]),
		Phone:     int64(asFloat(m["phone"])),
		ZipCode:   asString(m["zipCode"]),
		Total:     asFloat(m["total"]),
		Discount:  asFloat(m["discount"]),
		OrderDate: asDate(m["orderDate"]),
	}
	if s, ok := m["status"].(string); ok {
		if st, err := orders.ParseStatus(s); err == nil {
			o.Status = &st
		}
	}
	var refs []*firestore.DocumentRef
	if raw, ok := m["cartItems"].([]any); ok {
		for _, v := range raw {
			if ref, ok := v.(*firestore.DocumentRef); ok && ref != nil {
				refs = append(refs, ref)
			}
		}
	}
	return o, refs
}

func cartItemFromData(m map[string]any) orders.CartItem {
	it := orders.CartItem{Name: asString(m["name"])}
	switch img := m["image"].(type) {
	case string:
		it.Image = img
	case map[string]any:
		// Same {asset: {_ref}} shape as content-lake image fields.
		if asset, ok := img["asset"].(map[string]any); ok {
			it.Image = asString(asset["_ref"])
		}
	}
	return it
}

// resolveCart keeps reference order and drops dangling references.
func resolveCart(refs []*firestore.DocumentRef, items map[string]orders.CartItem) []orders.CartItem {
	out := make([]orders.CartItem, 0, len(refs))
	for _, ref := range refs {
		if it, ok := items[ref.Path]; ok {
			out = append(out, it)
		}
	}
	return out
}

func dedupeRefs(refs []*firestore.DocumentRef) []*firestore.DocumentRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]*firestore.DocumentRef, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.Path]; ok {
			continue
		}
		seen[r.Path] = struct{}{}
		out = append(out, r)
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func asDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return asString(v)
}
