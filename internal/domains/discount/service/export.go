package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"repairhub-backend/internal/domains/discount/model"
)

const exportSheet = "Discounts"

var exportHeaders = []string{
	"ID",
	"Code",
	"Name",
	"Type",
	"Value",
	"Scope",
	"Services",
	"Brand ID",
	"Series ID",
	"Model ID",
	"Enabled",
	"Currently Active",
	"Starts At",
	"Expires At",
	"Max Uses",
	"Current Uses",
	"Created At",
}

// BuildDiscountWorkbook lays out one discount per row under a bold header.
// "Currently Active" is evaluated at now.
func BuildDiscountWorkbook(discounts []*model.Discount, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)
	}

	for i, d := range discounts {
		row := i + 2
		values := []interface{}{
			d.ID.String(),
			d.Code,
			d.Name,
			string(d.DiscountType),
			d.DiscountValue.InexactFloat64(),
			string(d.ScopeType),
			len(d.ServiceIDs),
			optionalID(d.BrandID),
			optionalID(d.SeriesID),
			optionalID(d.ModelID),
			d.IsActive,
			IsDiscountActive(d, now),
			optionalTime(d.StartsAt),
			optionalTime(d.ExpiresAt),
			optionalInt(d.MaxUses),
			d.CurrentUses,
			d.CreatedAt.UTC().Format(time.RFC3339),
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	return f, nil
}

func optionalID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func optionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
