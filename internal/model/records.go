//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the operational record types moved through the
// pipeline and their CSV interchange format. The seed generator writes
// these records and staging ingestion reads them back, so the column
// order lives here and nowhere else.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// DateFormat is the layout for date fields in CSV files.
const DateFormat = "2006-01-02"

// TimeFormat is the layout for time-of-day fields in CSV files.
const TimeFormat = "15:04:05"

// CSV headers, in column order.
var (
	CustomerHeader = []string{"customer_id", "first_name", "last_name", "email",
		"phone", "registration_date", "city", "state", "country", "age_group"}
	ProductHeader = []string{"product_id", "product_name", "category", "sub_category",
		"price", "cost", "brand", "stock_quantity", "supplier_id"}
	TransactionHeader = []string{"transaction_id", "customer_id", "transaction_date",
		"transaction_time", "payment_method", "shipping_address", "total_amount"}
	TransactionItemHeader = []string{"item_id", "transaction_id", "product_id",
		"quantity", "unit_price", "discount_percentage", "line_total"}
)

// Customer is one row of the operational customers table.
type Customer struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	RegistrationDate time.Time
	City             string
	State            string
	Country          string
	AgeGroup         string
}

// Product is one row of the operational products table.
type Product struct {
	ID            string
	Name          string
	Category      string
	SubCategory   string
	Price         float64
	Cost          float64
	Brand         string
	StockQuantity int
	SupplierID    string
}

// Transaction is one row of the operational transactions table.
type Transaction struct {
	ID              string
	CustomerID      string
	Date            time.Time
	Time            string
	PaymentMethod   string
	ShippingAddress string
	TotalAmount     float64
}

// TransactionItem is one line of a transaction.
type TransactionItem struct {
	ID                 string
	TransactionID      string
	ProductID          string
	Quantity           int
	UnitPrice          float64
	DiscountPercentage float64
	LineTotal          float64
}

// Record returns the customer as a CSV record matching CustomerHeader.
func (c Customer) Record() []string {
	return []string{c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.RegistrationDate.Format(DateFormat), c.City, c.State, c.Country, c.AgeGroup}
}

// Record returns the product as a CSV record matching ProductHeader.
func (p Product) Record() []string {
	return []string{p.ID, p.Name, p.Category, p.SubCategory,
		formatMoney(p.Price), formatMoney(p.Cost), p.Brand,
		strconv.Itoa(p.StockQuantity), p.SupplierID}
}

// Record returns the transaction as a CSV record matching TransactionHeader.
func (t Transaction) Record() []string {
	return []string{t.ID, t.CustomerID, t.Date.Format(DateFormat), t.Time,
		t.PaymentMethod, t.ShippingAddress, formatMoney(t.TotalAmount)}
}

// Record returns the item as a CSV record matching TransactionItemHeader.
func (i TransactionItem) Record() []string {
	return []string{i.ID, i.TransactionID, i.ProductID, strconv.Itoa(i.Quantity),
		formatMoney(i.UnitPrice), formatMoney(i.DiscountPercentage),
		formatMoney(i.LineTotal)}
}

// ParseCustomer converts a CSV record into a Customer.
func ParseCustomer(rec []string) (Customer, error) {
	if len(rec) != len(CustomerHeader) {
		return Customer{}, fmt.Errorf("customer record has %d fields, expected %d",
			len(rec), len(CustomerHeader))
	}
	reg, err := time.Parse(DateFormat, rec[5])
	if err != nil {
		return Customer{}, fmt.Errorf("customer %s: invalid registration_date %q", rec[0], rec[5])
	}
	return Customer{
		ID:               rec[0],
		FirstName:        rec[1],
		LastName:         rec[2],
		Email:            rec[3],
		Phone:            rec[4],
		RegistrationDate: reg,
		City:             rec[6],
		State:            rec[7],
		Country:          rec[8],
		AgeGroup:         rec[9],
	}, nil
}

// ParseProduct converts a CSV record into a Product.
func ParseProduct(rec []string) (Product, error) {
	if len(rec) != len(ProductHeader) {
		return Product{}, fmt.Errorf("product record has %d fields, expected %d",
			len(rec), len(ProductHeader))
	}
	price, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return Product{}, fmt.Errorf("product %s: invalid price %q", rec[0], rec[4])
	}
	cost, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return Product{}, fmt.Errorf("product %s: invalid cost %q", rec[0], rec[5])
	}
	stock, err := strconv.Atoi(rec[7])
	if err != nil {
		return Product{}, fmt.Errorf("product %s: invalid stock_quantity %q", rec[0], rec[7])
	}
	return Product{
		ID:            rec[0],
		Name:          rec[1],
		Category:      rec[2],
		SubCategory:   rec[3],
		Price:         price,
		Cost:          cost,
		Brand:         rec[6],
		StockQuantity: stock,
		SupplierID:    rec[8],
	}, nil
}

// ParseTransaction converts a CSV record into a Transaction.
func ParseTransaction(rec []string) (Transaction, error) {
	if len(rec) != len(TransactionHeader) {
		return Transaction{}, fmt.Errorf("transaction record has %d fields, expected %d",
			len(rec), len(TransactionHeader))
	}
	date, err := time.Parse(DateFormat, rec[2])
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: invalid transaction_date %q", rec[0], rec[2])
	}
	if _, err := time.Parse(TimeFormat, rec[3]); err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: invalid transaction_time %q", rec[0], rec[3])
	}
	total, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: invalid total_amount %q", rec[0], rec[6])
	}
	return Transaction{
		ID:              rec[0],
		CustomerID:      rec[1],
		Date:            date,
		Time:            rec[3],
		PaymentMethod:   rec[4],
		ShippingAddress: rec[5],
		TotalAmount:     total,
	}, nil
}

// ParseTransactionItem converts a CSV record into a TransactionItem.
func ParseTransactionItem(rec []string) (TransactionItem, error) {
	if len(rec) != len(TransactionItemHeader) {
		return TransactionItem{}, fmt.Errorf("item record has %d fields, expected %d",
			len(rec), len(TransactionItemHeader))
	}
	qty, err := strconv.Atoi(rec[3])
	if err != nil {
		return TransactionItem{}, fmt.Errorf("item %s: invalid quantity %q", rec[0], rec[3])
	}
	price, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return TransactionItem{}, fmt.Errorf("item %s: invalid unit_price %q", rec[0], rec[4])
	}
	disc, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return TransactionItem{}, fmt.Errorf("item %s: invalid discount_percentage %q", rec[0], rec[5])
	}
	total, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return TransactionItem{}, fmt.Errorf("item %s: invalid line_total %q", rec[0], rec[6])
	}
	return TransactionItem{
		ID:                 rec[0],
		TransactionID:      rec[1],
		ProductID:          rec[2],
		Quantity:           qty,
		UnitPrice:          price,
		DiscountPercentage: disc,
		LineTotal:          total,
	}, nil
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
