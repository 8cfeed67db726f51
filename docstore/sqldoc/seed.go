package sqldoc

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"orderdesk/orders"
	"orderdesk/store"
)

// SeedFile is the YAML layout accepted by orderdesk-seed. Cart entries name
// products by their id, either in the same file or already in the database.
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
	Orders   []SeedOrder   `yaml:"orders"`
}

type SeedProduct struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Image string `yaml:"image"`
}

type SeedOrder struct {
	ID        string   `yaml:"id"`
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Email     string   `yaml:"email"`
	Company   string   `yaml:"company"`
	Country   string   `yaml:"country"`
	City      string   `yaml:"city"`
	Address1  string   `yaml:"address1"`
	Address2  string   `yaml:"address2"`
	Phone     int64    `yaml:"phone"`
	ZipCode   string   `yaml:"zip_code"`
	Total     float64  `yaml:"total"`
	Discount  float64  `yaml:"discount"`
	Status    string   `yaml:"status"`
	OrderDate string   `yaml:"order_date"`
	Cart      []string `yaml:"cart"`
}

func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Seed inserts every product, then every order in file order. A blank status
// is stored as absent; any other value must be a known status.
func (b *Backend) Seed(ctx context.Context, f *SeedFile) (products, orderCount int, err error) {
	ids := make(map[string]string, len(f.Products))
	for _, sp := range f.Products {
		p := &store.Product{ID: sp.ID, Name: sp.Name, Image: sp.Image}
		if err := b.db.CreateProduct(ctx, p); err != nil {
			return products, orderCount, err
		}
		ids[sp.ID] = p.ID
		products++
	}
	for i, so := range f.Orders {
		o := orders.Order{
			ID: so.ID, FirstName: so.FirstName, LastName: so.LastName, Email: so.Email,
			Company: so.Company, Country: so.Country, City: so.City,
			Address1: so.Address1, Address2: so.Address2, Phone: so.Phone, ZipCode: so.ZipCode,
			Total: so.Total, Discount: so.Discount, OrderDate: so.OrderDate,
		}
		if so.Status != "" {
			st, err := orders.ParseStatus(so.Status)
			if err != nil {
				return products, orderCount, fmt.Errorf("order %d: %w", i+1, err)
			}
			o.Status = &st
		}
		refs := make([]string, 0, len(so.Cart))
		for _, ref := range so.Cart {
			id, ok := ids[ref]
			if !ok {
				p, err := b.db.GetProduct(ctx, ref)
				if err != nil {
					return products, orderCount, fmt.Errorf("order %d: unknown product %q: %w", i+1, ref, err)
				}
				id = p.ID
				ids[ref] = id
			}
			refs = append(refs, id)
		}
		if err := b.db.CreateOrder(ctx, FromOrder(o, refs)); err != nil {
			return products, orderCount, err
		}
		orderCount++
	}
	return products, orderCount, nil
}
