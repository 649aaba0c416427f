package tax

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deductfinder/backend/internal/model"
)

// ExportFilename is the downstream filename convention for a CSV report.
func ExportFilename(j model.Jurisdiction, date time.Time) string {
	return fmt.Sprintf("deductions-%s-%s.csv", j, date.Format("2006-01-02"))
}

// csvAmount rounds to two decimal places only here, at the export boundary.
func csvAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// WriteCSV serializes expenses and mileage entries as a flat report: one row
// per expense, then one synthesized row per mileage entry, in input order.
// Amounts are normalized to the reporting currency. Output is deterministic
// for identical inputs.
func (a *Analyzer) WriteCSV(w io.Writer, expenses []model.Expense, mileage []model.Mileage) error {
	cw := csv.NewWriter(w)

	header := []string{"Description", "Amount", "Currency", "Category", "Date", "Client", fmt.Sprintf("%s Reference", a.profile.Authority)}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, e := range expenses {
		amount, err := a.conv.Convert(e.Amount, e.Currency, a.profile.ReportingCurrency)
		if err != nil {
			return err
		}
		rule, err := a.rules.Lookup(e.Category)
		if err != nil {
			return err
		}
		client := e.Client
		if client == "" {
			client = "N/A"
		}
		row := []string{
			e.Description,
			csvAmount(amount),
			string(a.profile.ReportingCurrency),
			string(e.Category),
			e.CreatedAt.Format("2006-01-02"),
			client,
			rule.Citation,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write expense row: %w", err)
		}
	}

	vehicleRule, err := a.rules.Lookup(model.CategoryVehicle)
	if err != nil {
		return err
	}
	for _, m := range mileage {
		deduction, err := MileageDeduction(m.Distance, m.Unit, a.profile)
		if err != nil {
			return err
		}
		client := m.Client
		if client == "" {
			client = "N/A"
		}
		row := []string{
			m.Purpose,
			csvAmount(deduction),
			string(a.profile.ReportingCurrency),
			string(model.CategoryVehicle),
			m.Date.Format("2006-01-02"),
			client,
			vehicleRule.Citation,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write mileage row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
