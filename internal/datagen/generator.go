//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-warehouse/internal/model"
)

// PaymentMethods are the payment channels the operational store produces.
var PaymentMethods = []string{
	"Credit Card", "Debit Card", "UPI", "Cash on Delivery", "Net Banking",
}

// AgeGroups are the customer age buckets.
var AgeGroups = []string{"18-25", "26-35", "36-45", "46-60", "60+"}

// Categories are the product categories.
var Categories = []string{
	"Electronics", "Clothing", "Home & Kitchen", "Books", "Sports", "Beauty",
}

// DiscountLevels are the discount percentages a transaction item can carry.
var DiscountLevels = []float64{0, 5, 10, 15}

// Config controls batch generation.
type Config struct {
	Customers    int
	Products     int
	Transactions int

	// StartDate and EndDate bound the transaction dates (inclusive).
	StartDate time.Time
	EndDate   time.Time

	// Seed makes generation reproducible; 0 picks a random seed.
	Seed uint64
}

// Batch is one generated operational dataset.
type Batch struct {
	Customers    []model.Customer
	Products     []model.Product
	Transactions []model.Transaction
	Items        []model.TransactionItem
}

// IntegrityReport is the generator's referential self-check.
type IntegrityReport struct {
	OrphanTransactions     int `json:"orphan_transactions"`
	OrphanItemProducts     int `json:"orphan_item_products"`
	OrphanItemTransactions int `json:"orphan_item_transactions"`
	Score                  int `json:"data_quality_score"`
}

// Generator produces synthetic operational batches.
type Generator struct {
	faker *Faker
	cfg   Config
}

// New creates a generator for the configuration.
func New(cfg Config) *Generator {
	faker := NewFaker()
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	}
	return &Generator{faker: faker, cfg: cfg}
}

// Generate builds a full batch: customers, products, and transactions
// with their line items. Business keys use fixed-width numeric suffixes
// (CUST0001, PROD0001, TXN00001, ITEM00001) and customer emails are
// unique within the batch.
func (g *Generator) Generate() *Batch {
	batch := &Batch{
		Customers: g.generateCustomers(),
		Products:  g.generateProducts(),
	}
	batch.Transactions, batch.Items = g.generateTransactions(batch.Customers, batch.Products)
	return batch
}

func (g *Generator) generateCustomers() []model.Customer {
	customers := make([]model.Customer, 0, g.cfg.Customers)
	usedEmails := make(map[string]bool, g.cfg.Customers)

	for i := 1; i <= g.cfg.Customers; i++ {
		email := g.faker.Email()
		for usedEmails[email] {
			email = g.faker.Email()
		}
		usedEmails[email] = true

		customers = append(customers, model.Customer{
			ID:        fmt.Sprintf("CUST%04d", i),
			FirstName: g.faker.FirstName(),
			LastName:  g.faker.LastName(),
			Email:     email,
			Phone:     g.faker.Phone(),
			// Registration always predates the transaction window so the
			// generated batch passes its own business-rule checks.
			RegistrationDate: g.faker.DateRange(
				g.cfg.StartDate.AddDate(-3, 0, 0), g.cfg.StartDate),
			City:     g.faker.City(),
			State:    g.faker.State(),
			Country:  g.faker.Country(),
			AgeGroup: Choose(g.faker, AgeGroups),
		})
	}
	return customers
}

func (g *Generator) generateProducts() []model.Product {
	products := make([]model.Product, 0, g.cfg.Products)

	for i := 1; i <= g.cfg.Products; i++ {
		price := round2(g.faker.Float64(100, 5000))
		cost := round2(price * g.faker.Float64(0.5, 0.8))

		products = append(products, model.Product{
			ID:            fmt.Sprintf("PROD%04d", i),
			Name:          g.faker.ProductName(),
			Category:      Choose(g.faker, Categories),
			SubCategory:   titleWord(g.faker.Word()),
			Price:         price,
			Cost:          cost,
			Brand:         g.faker.Company(),
			StockQuantity: g.faker.Int(10, 500),
			SupplierID:    fmt.Sprintf("SUP%03d", g.faker.Int(1, 50)),
		})
	}
	return products
}

func (g *Generator) generateTransactions(customers []model.Customer,
	products []model.Product) ([]model.Transaction, []model.TransactionItem) {

	transactions := make([]model.Transaction, 0, g.cfg.Transactions)
	var items []model.TransactionItem

	for i := 1; i <= g.cfg.Transactions; i++ {
		transactionID := fmt.Sprintf("TXN%05d", i)
		numItems := g.faker.Int(1, 5)

		var total float64
		for j := 0; j < numItems; j++ {
			product := Choose(g.faker, products)
			quantity := g.faker.Int(1, 5)
			discount := Choose(g.faker, DiscountLevels)
			lineTotal := round2(float64(quantity) * product.Price * (1 - discount/100))
			total += lineTotal

			items = append(items, model.TransactionItem{
				ID:                 fmt.Sprintf("ITEM%05d", len(items)+1),
				TransactionID:      transactionID,
				ProductID:          product.ID,
				Quantity:           quantity,
				UnitPrice:          product.Price,
				DiscountPercentage: discount,
				LineTotal:          lineTotal,
			})
		}

		transactions = append(transactions, model.Transaction{
			ID:         transactionID,
			CustomerID: Choose(g.faker, customers).ID,
			Date:       g.faker.DateRange(g.cfg.StartDate, g.cfg.EndDate),
			Time: fmt.Sprintf("%02d:%02d:%02d",
				g.faker.Int(0, 23), g.faker.Int(0, 59), g.faker.Int(0, 59)),
			PaymentMethod:   Choose(g.faker, PaymentMethods),
			ShippingAddress: g.faker.Street() + ", " + g.faker.City(),
			TotalAmount:     round2(total),
		})
	}
	return transactions, items
}

// CheckIntegrity verifies the batch's referential integrity: every
// transaction references a generated customer and every item references
// a generated product and transaction.
func (b *Batch) CheckIntegrity() IntegrityReport {
	customerIDs := make(map[string]bool, len(b.Customers))
	for _, c := range b.Customers {
		customerIDs[c.ID] = true
	}
	productIDs := make(map[string]bool, len(b.Products))
	for _, p := range b.Products {
		productIDs[p.ID] = true
	}
	transactionIDs := make(map[string]bool, len(b.Transactions))
	for _, t := range b.Transactions {
		transactionIDs[t.ID] = true
	}

	var report IntegrityReport
	for _, t := range b.Transactions {
		if !customerIDs[t.CustomerID] {
			report.OrphanTransactions++
		}
	}
	for _, i := range b.Items {
		if !productIDs[i.ProductID] {
			report.OrphanItemProducts++
		}
		if !transactionIDs[i.TransactionID] {
			report.OrphanItemTransactions++
		}
	}

	report.Score = 100
	if report.OrphanTransactions+report.OrphanItemProducts+report.OrphanItemTransactions > 0 {
		report.Score = 90
	}
	return report
}

// DateRange returns the earliest and latest transaction dates in the batch.
func (b *Batch) DateRange() (start, end time.Time) {
	for _, t := range b.Transactions {
		if start.IsZero() || t.Date.Before(start) {
			start = t.Date
		}
		if end.IsZero() || t.Date.After(end) {
			end = t.Date
		}
	}
	return start, end
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
