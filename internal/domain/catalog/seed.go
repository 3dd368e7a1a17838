package catalog

import "github.com/shopspring/decimal"

// Seed returns the storefront's default product list in display order.
func Seed() []*Product {
	type row struct {
		id    int64
		name  string
		price int64
		stock int
	}
	rows := []row{
		{1, "لابتوب احترافي", 4999, 10},
		{2, "سماعات لاسلكية", 799, 25},
		{3, "ساعة ذكية برو", 1599, 15},
		{4, "كاميرا احترافية 4K", 3299, 8},
		{5, "لوحة مفاتيح ميكانيكية", 899, 30},
		{6, "شاشة منحنية 4K", 2499, 12},
		{7, "ماوس احترافي للألعاب", 599, 40},
		{8, "هاتف ذكي فلاجشيب", 3999, 20},
		{9, "سماعة VR", 2199, 6},
	}
	out := make([]*Product, 0, len(rows))
	for _, r := range rows {
		p, _ := NewProduct(r.id, r.name, decimal.NewFromInt(r.price), r.stock)
		out = append(out, p)
	}
	return out
}
