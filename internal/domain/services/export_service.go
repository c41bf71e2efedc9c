package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/models"
)

const noticeSheetName = "Notices"

var noticeExportHeader = []string{"ID", "Title", "File", "Status", "Start", "End", "Created"}

// InterfaceExportService renders the notice register of a building complex.
type InterfaceExportService interface {
	ExportNotices(ctx context.Context, caller *models.User, buildingComplexID uint) ([]byte, string, error)
}

type ExportService struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewExportService(db *gorm.DB, logger *zap.Logger) InterfaceExportService {
	return &ExportService{DB: db, logger: logger}
}

// ExportNotices returns an xlsx workbook of every notice of the complex, newest first, and a file name for it.
func (s *ExportService) ExportNotices(ctx context.Context, caller *models.User, buildingComplexID uint) ([]byte, string, error) {
	var bc models.BuildingComplex
	if err := s.DB.WithContext(ctx).First(&bc, buildingComplexID).Error; err != nil {
		return nil, "", notFound(err, ErrBuildingComplexNotFound)
	}
	if err := CheckOrganisationAccess(caller, bc.OrganisationID); err != nil {
		return nil, "", err
	}

	var notices []models.Notice
	err := s.DB.WithContext(ctx).
		Where("building_complex_id = ?", bc.ID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notices).Error
	if err != nil {
		return nil, "", fmt.Errorf("load notices for export: %w", err)
	}

	data, err := RenderNoticeWorkbook(notices)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("notice register exported",
		zap.Uint("building_complex_id", bc.ID),
		zap.Int("notices", len(notices)))
	return data, fmt.Sprintf("notices-%d-%s.xlsx", bc.ID, time.Now().UTC().Format("20060102")), nil
}

// RenderNoticeWorkbook writes notices into a single-sheet workbook with a frozen header row.
func RenderNoticeWorkbook(notices []models.Notice) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(noticeSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range noticeExportHeader {
		if err := setCell(f, col+1, 1, header); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetCellStyle(noticeSheetName, "A1", "G1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(noticeSheetName, "B", "C", 40); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, n := range notices {
		row := i + 2
		values := []interface{}{n.ID, n.Title, n.FileName, string(n.Status), formatDate(n.StartDate), formatDate(n.EndDate), n.CreatedAt.UTC().Format(time.RFC3339)}
		for col, value := range values {
			if err := setCell(f, col+1, row, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := f.SetPanes(noticeSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(noticeSheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
