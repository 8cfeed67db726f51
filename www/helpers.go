package www

import (
	"fmt"
	"html/template"

	"orderdesk/assets"
	"orderdesk/orders"
)

func templateFuncs(res assets.Resolver) template.FuncMap {
	return template.FuncMap{
		"formatDate": func(o orders.Order) string {
			if t, ok := o.Date(); ok {
				return t.Format("Jan 2, 2006")
			}
			if o.OrderDate == "" {
				return "-"
			}
			return o.OrderDate
		},
		"money": func(f float64) string {
			return fmt.Sprintf("$%.2f", f)
		},
		"label": orders.Label,
		"statusText": func(s *orders.Status) string {
			if s == nil {
				return "-"
			}
			return orders.Label(string(*s))
		},
		"statusColor": func(s *orders.Status) string {
			if s == nil {
				return "badge-none"
			}
			return "badge-" + string(*s)
		},
		"assetURL": func(ref string) string {
			if res == nil {
				return ""
			}
			return res.URL(ref)
		},
		"eqStatus": func(a orders.Status, b orders.Status) bool {
			return a == b
		},
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
	}
}
