package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nexlearn/campus-rewards/internal/repositories"
)

const exportBatchSize = 500

// ExportService renders staff reports. Spreadsheets for the redemption desk,
// CSV for the point ledger.
type ExportService interface {
	// RedemptionsXLSX renders the filtered redemptions as a spreadsheet.
	RedemptionsXLSX(ctx context.Context, filters repositories.RedemptionFilters) ([]byte, error)
	// HistoryCSV renders the filtered point history as CSV.
	HistoryCSV(ctx context.Context, filters repositories.HistoryFilters) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) RedemptionsXLSX(ctx context.Context, filters repositories.RedemptionFilters) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Redemptions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Code", "Student", "Email", "Voucher", "Cost", "Value (AED)", "Status", "Requested", "Processed By", "Processed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	row := 2
	filters.Limit = exportBatchSize
	filters.Offset = 0
	for {
		redemptions, _, err := s.repo.Redemptions().List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list redemptions: %w", err)
		}
		for _, r := range redemptions {
			processedBy := ""
			if r.ProcessedBy != nil {
				processedBy = *r.ProcessedBy
			}
			processedAt := ""
			if r.ProcessedAt != nil {
				processedAt = r.ProcessedAt.Format(time.RFC3339)
			}
			values := []interface{}{
				r.Code,
				r.Student.FullName,
				r.Student.Email,
				r.VoucherLevel.Name,
				r.VoucherLevel.Cost,
				r.VoucherLevel.ValueAED,
				string(r.Status),
				r.CreatedAt.Format(time.RFC3339),
				processedBy,
				processedAt,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
		if len(redemptions) < exportBatchSize {
			break
		}
		filters.Offset += exportBatchSize
	}

	f.SetColWidth(sheet, "A", "J", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	s.logger.Info("Redemption report rendered", "rows", row-2)
	return buf.Bytes(), nil
}

func (s *exportService) HistoryCSV(ctx context.Context, filters repositories.HistoryFilters) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "user_id", "amount", "type", "reason", "created_at"}); err != nil {
		return nil, err
	}

	rows := 0
	filters.Limit = exportBatchSize
	filters.Offset = 0
	for {
		entries, _, err := s.repo.History().List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}
		for _, e := range entries {
			record := []string{
				strconv.FormatUint(uint64(e.ID), 10),
				e.UserID,
				strconv.Itoa(e.Amount),
				string(e.Type),
				e.Reason,
				e.CreatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
			rows++
		}
		if len(entries) < exportBatchSize {
			break
		}
		filters.Offset += exportBatchSize
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	s.logger.Info("History report rendered", "rows", rows)
	return buf.Bytes(), nil
}
