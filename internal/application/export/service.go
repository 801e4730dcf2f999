// Package export produces spreadsheet exports of the invoice ledger.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/buildium/backend/internal/domain/invoice"
)

var columns = []string{
	"Numéro", "Date", "Client", "Statut",
	"Total HT", "TVA", "Total TTC",
}

// Service exports filtered invoice lists as XLSX or CSV files.
type Service struct {
	repo   invoice.Repository
	logger *zap.Logger
}

// NewService creates a new export Service
func NewService(repo invoice.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// fetch loads every invoice matching the filter, ignoring pagination.
func (s *Service) fetch(ctx context.Context, filter invoice.Filter) ([]invoice.Invoice, error) {
	filter.Page = 0
	filter.PageSize = 0
	invoices, _, err := s.repo.FindAll(ctx, filter)
	return invoices, err
}

func row(inv *invoice.Invoice) []string {
	return []string{
		inv.Number,
		inv.IssueDate.Format("02/01/2006"),
		inv.Counterparty.Name,
		inv.Status.DisplayName(),
		inv.Totals.TotalExcl.StringFixed(2),
		inv.Totals.TotalTax.StringFixed(2),
		inv.Totals.TotalIncl.StringFixed(2),
	}
}

// ExcelExport builds an XLSX workbook with one row per invoice.
func (s *Service) ExcelExport(ctx context.Context, filter invoice.Filter) ([]byte, error) {
	invoices, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Factures"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for r, inv := range invoices {
		for c, value := range row(&inv) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", r+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}

	s.logger.Info("Excel export produced", zap.Int("invoices", len(invoices)))
	return buf.Bytes(), nil
}

// CSVExport writes the same table as comma separated CSV with a
// header row.
func (s *Service) CSVExport(ctx context.Context, filter invoice.Filter) ([]byte, error) {
	invoices, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for i := range invoices {
		if err := w.Write(row(&invoices[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("CSV export produced", zap.Int("invoices", len(invoices)))
	return buf.Bytes(), nil
}
