package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/config"
	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/pricing"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/quote/main.go <cart.json|->")
		fmt.Println("Example: go run cmd/quote/main.go cmd/quote/testdata/cart.json")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	saved, err := readCart(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read cart: %v\n", err)
		os.Exit(1)
	}

	// Fees and tax come from configuration, the file supplies the rest
	store := cart.Restore(cart.Settings{
		DeliveryFee:    cfg.Cart.DeliveryFee,
		PackagingFee:   cfg.Cart.PackagingFee,
		ServiceFee:     cfg.Cart.ServiceFee,
		TaxRate:        cfg.Cart.TaxRate,
		DeliveryMethod: cfg.Cart.DefaultDeliveryMethod,
	}, saved)

	snap, totals := store.SnapshotWithTotals()
	f := pricing.NewFormatter(cfg.Cart.CurrencySymbol)

	for _, line := range snap.Lines {
		name := line.Name
		if line.Variant != nil {
			name += " (" + line.Variant.Name + ")"
		}
		fmt.Printf("%3d x %-32s %14s\n", line.Qty, name, f.Money(line.LineTotal))
		for _, m := range line.Modifiers {
			fmt.Printf("      + %s\n", m.Name)
		}
	}

	display := f.Totals(totals)
	fmt.Println()
	fmt.Printf("%-38s %14s\n", "Subtotal", display.Subtotal)
	if snap.Coupon != nil {
		fmt.Printf("%-38s %14s\n", "Discount ("+snap.Coupon.Code+")", display.Discount)
	}
	fmt.Printf("%-38s %14s\n", "Tax ("+f.Percent(snap.TaxRate)+")", display.Tax)
	fmt.Printf("%-38s %14s\n", "Fees ("+string(snap.DeliveryMethod)+")", display.Fees)
	if snap.Tip > 0 {
		fmt.Printf("%-38s %14s\n", "Tip", f.Money(snap.Tip))
	}
	fmt.Printf("%-38s %14s\n", "Total", display.GrandTotal)
}

func readCart(path string) (domain.Cart, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return domain.Cart{}, err
		}
		defer file.Close()
		r = file
	}

	var saved domain.Cart
	if err := json.NewDecoder(r).Decode(&saved); err != nil {
		return domain.Cart{}, fmt.Errorf("invalid cart JSON: %w", err)
	}
	return saved, nil
}
