package tax

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/deductfinder/backend/internal/model"
)

func TestExportFilename(t *testing.T) {
	got := ExportFilename(model.JurisdictionUS, date(2024, time.March, 15))
	if got != "deductions-US-2024-03-15.csv" {
		t.Errorf("ExportFilename = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	a := usAnalyzer(t)
	expenses := []model.Expense{
		expense("paper", 100, model.CurrencyUSD, model.CategoryOfficeSupplies, "Acme", date(2024, time.March, 1)),
		expense("dinner", 92, model.CurrencyEUR, model.CategoryMeals, "", date(2024, time.March, 2)),
	}
	mileage := []model.Mileage{
		{ID: "m1", Date: date(2024, time.March, 3), Distance: 100, Unit: model.UnitMiles, Purpose: "client visit", Client: "Acme"},
	}

	var buf bytes.Buffer
	if err := a.WriteCSV(&buf, expenses, mileage); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("row count = %d, want header + 3", len(rows))
	}

	header := rows[0]
	wantHeader := []string{"Description", "Amount", "Currency", "Category", "Date", "Client", "IRS Reference"}
	for i, col := range wantHeader {
		if header[i] != col {
			t.Errorf("header[%d] = %q, want %q", i, header[i], col)
		}
	}

	paper := rows[1]
	if paper[0] != "paper" || paper[1] != "100.00" || paper[2] != "USD" || paper[5] != "Acme" {
		t.Errorf("unexpected expense row: %v", paper)
	}

	// The EUR amount is normalized to the reporting currency and the empty
	// client renders as N/A.
	dinner := rows[2]
	if dinner[1] != "100.00" || dinner[2] != "USD" || dinner[5] != "N/A" {
		t.Errorf("unexpected normalized row: %v", dinner)
	}

	trip := rows[3]
	if trip[0] != "client visit" || trip[1] != "67.00" || trip[3] != string(model.CategoryVehicle) {
		t.Errorf("unexpected mileage row: %v", trip)
	}
	if trip[6] != "IRS Pub 463" {
		t.Errorf("mileage reference = %q, want vehicle citation", trip[6])
	}
}

func TestWriteCSVDeterministic(t *testing.T) {
	a := usAnalyzer(t)
	expenses := []model.Expense{
		expense("b", 20, model.CurrencyUSD, model.CategoryTravel, "", date(2024, time.May, 1)),
		expense("a", 10, model.CurrencyUSD, model.CategoryOfficeSupplies, "", date(2024, time.May, 2)),
	}
	mileage := []model.Mileage{
		{ID: "m1", Date: date(2024, time.May, 3), Distance: 12, Unit: model.UnitMiles, Purpose: "errand"},
	}

	var first, second bytes.Buffer
	if err := a.WriteCSV(&first, expenses, mileage); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if err := a.WriteCSV(&second, expenses, mileage); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("identical inputs produced different CSV output")
	}

	// Rows appear in input order, not sorted.
	rows, _ := csv.NewReader(&first).ReadAll()
	if rows[1][0] != "b" || rows[2][0] != "a" {
		t.Errorf("rows not in input order: %v, %v", rows[1][0], rows[2][0])
	}
}

func TestWriteCSVAUAuthority(t *testing.T) {
	a, err := NewAnalyzer(model.JurisdictionAU)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	var buf bytes.Buffer
	if err := a.WriteCSV(&buf, nil, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if rows[0][6] != "ATO Reference" {
		t.Errorf("AU header reference column = %q, want ATO Reference", rows[0][6])
	}
}
