package services_test

import (
	"errors"
	"testing"

	"snackstack/internal/domain"
	"snackstack/internal/repos"
	"snackstack/internal/services"
)

func TestCartService_AddMergesAndKeepsFirstAnnotation(t *testing.T) {
	db := memdb(t)
	carts := services.NewCartService(repos.NewCartRepo(db))
	p, err := repos.NewProductRepo(db).Get("2")
	if err != nil {
		t.Fatal(err)
	}

	d := &domain.Discount{OriginalPrice: p.Price, DiscountPercentage: 15, ComboID: "bundle-x"}
	if err := carts.Add("sid", p, 1, p.Price*0.85, d); err != nil {
		t.Fatal(err)
	}
	if err := carts.Add("sid", p, 2, p.Price, nil); err != nil {
		t.Fatal(err)
	}

	v, err := carts.View("sid")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Items) != 1 {
		t.Fatalf("want 1 merged line, got %d", len(v.Items))
	}
	it := v.Items[0]
	if it.Quantity != 3 || it.Discount == nil || it.Discount.ComboID != "bundle-x" {
		t.Fatalf("merged line lost its first annotation: %+v", it)
	}
	if it.Product.Name != "Spicy Jalapeño" {
		t.Fatalf("snapshot not stored: %+v", it.Product)
	}
	if v.TotalItems != 3 {
		t.Fatalf("want 3 items, got %d", v.TotalItems)
	}
}

func TestCartService_ViewGroupsCombos(t *testing.T) {
	db := memdb(t)
	carts := services.NewCartService(repos.NewCartRepo(db))
	prods := repos.NewProductRepo(db)
	lays, _ := prods.Get("1")
	dor, _ := prods.Get("2")
	pop, _ := prods.Get("8")

	_ = carts.Add("sid", lays, 1, lays.Price, nil)
	for _, p := range []domain.Product{dor, pop} {
		d := &domain.Discount{OriginalPrice: p.Price, DiscountPercentage: 10, ComboID: "idle-1"}
		if err := carts.Add("sid", p, 1, p.Price*0.9, d); err != nil {
			t.Fatal(err)
		}
	}

	v, err := carts.View("sid")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Combos) != 1 || len(v.Combos[0].ProductIDs) != 2 {
		t.Fatalf("want one combo of two products, got %+v", v.Combos)
	}
	wantSavings := 0.87 // (4.29 + 4.49) * 0.10, rounded
	if v.Combos[0].Savings != wantSavings {
		t.Fatalf("combo savings: want %.2f, got %.2f", wantSavings, v.Combos[0].Savings)
	}
	wantTotal := 3.99 + 4.29*0.9 + 4.49*0.9
	if diff := v.TotalPrice - wantTotal; diff > 0.006 || diff < -0.006 {
		t.Fatalf("total: want %.2f, got %.2f", wantTotal, v.TotalPrice)
	}
	if v.Items[0].Product.ID != "1" {
		t.Fatalf("lines should keep insertion order, got %s first", v.Items[0].Product.ID)
	}
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	db := memdb(t)
	carts := services.NewCartService(repos.NewCartRepo(db))
	prods := repos.NewProductRepo(db)
	lays, _ := prods.Get("1")
	dor, _ := prods.Get("2")
	_ = carts.Add("sid", lays, 1, lays.Price, nil)
	_ = carts.Add("sid", dor, 1, dor.Price, nil)

	if err := carts.UpdateQuantity("sid", "1", 4); err != nil {
		t.Fatal(err)
	}
	if err := carts.UpdateQuantity("sid", "5", 2); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want ErrNotFound for a product not in the cart, got %v", err)
	}
	if err := carts.UpdateQuantity("sid", "2", 0); err != nil {
		t.Fatal(err)
	}
	v, _ := carts.View("sid")
	if len(v.Items) != 1 || v.Items[0].Quantity != 4 {
		t.Fatalf("want only Lay's x4, got %+v", v.Items)
	}

	if err := carts.Remove("sid", "1"); err != nil {
		t.Fatal(err)
	}
	_ = carts.Add("sid", dor, 1, dor.Price, nil)
	if err := carts.Clear("sid"); err != nil {
		t.Fatal(err)
	}
	if n, _ := carts.Len("sid"); n != 0 {
		t.Fatalf("want empty cart, got %d lines", n)
	}
}
