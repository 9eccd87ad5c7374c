package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

const (
	exportSheet        = "导师信息"
	defaultExportLimit = 1000
	schoolStatsLimit   = 10

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

var exportHeader = []string{
	"ID", "姓名", "职称", "学校", "院系", "研究方向", "邮箱", "电话", "个人主页",
	"招生类型", "是否有经费", "论文数量", "项目数量", "标签", "创建时间", "更新时间",
}

var recruitmentLabels = map[models.RecruitmentType]string{
	models.RecruitAcademic:     "学硕",
	models.RecruitProfessional: "专硕",
	models.RecruitBoth:         "学硕+专硕",
}

type ExportService interface {
	Export(ctx context.Context, db *gorm.DB, q *dto.ExportQuery) (*dto.ExportFile, error)
	Stats(ctx context.Context, db *gorm.DB, q *dto.ExportQuery) (*dto.ExportStats, error)
}

type ExportServiceImpl struct {
	tutorRepo repositories.TutorRepository
	maxRows   int
	now       func() time.Time
}

func NewExportService(tutorRepo repositories.TutorRepository, maxRows int) ExportService {
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &ExportServiceImpl{tutorRepo: tutorRepo, maxRows: maxRows, now: time.Now}
}

func (s *ExportServiceImpl) filter(q *dto.ExportQuery) repositories.TutorFilter {
	return repositories.TutorFilter{
		Keyword:        q.Keyword,
		KeywordColumns: repositories.SearchKeywordColumns,
		School:         q.School,
		Department:     q.Department,
		Title:          q.Title,
	}
}

// Export renders matching tutors as an xlsx workbook or a csv file.
func (s *ExportServiceImpl) Export(ctx context.Context, db *gorm.DB, q *dto.ExportQuery) (*dto.ExportFile, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultExportLimit
	}
	if limit > s.maxRows {
		limit = s.maxRows
	}
	format := q.Format
	if format == "" {
		format = "excel"
	}

	filter := s.filter(q)
	filter.Limit = limit
	tutors, _, err := s.tutorRepo.Search(db, filter)
	if err != nil {
		logger.CtxWithError(ctx, "export query failed", err)
		return nil, apperrors.InternalError(err)
	}
	if len(tutors) == 0 {
		return nil, apperrors.ErrNoExportData
	}

	rows := make([][]string, len(tutors))
	for i := range tutors {
		rows[i] = exportRow(&tutors[i])
	}

	stamp := s.now().Format("20060102_150405")
	file := &dto.ExportFile{Rows: len(rows)}
	switch format {
	case "csv":
		file.Data, err = renderCSV(rows)
		file.Filename = fmt.Sprintf("导师信息_%s.csv", stamp)
		file.ContentType = contentTypeCSV
	default:
		file.Data, err = renderXLSX(rows)
		file.Filename = fmt.Sprintf("导师信息_%s.xlsx", stamp)
		file.ContentType = contentTypeXLSX
	}
	if err != nil {
		logger.CtxWithError(ctx, "export render failed", err, "format", format)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "tutors exported", "format", format, "rows", file.Rows)
	return file, nil
}

func (s *ExportServiceImpl) Stats(ctx context.Context, db *gorm.DB, q *dto.ExportQuery) (*dto.ExportStats, error) {
	filter := s.filter(q)

	total, err := s.tutorRepo.Count(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	schools, err := s.tutorRepo.TopValues(db, "school_name", filter, schoolStatsLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	titles, err := s.tutorRepo.TopValues(db, "title", filter, 0)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	stats := &dto.ExportStats{
		TotalCount:     total,
		MaxExportLimit: s.maxRows,
		CanExport:      total > 0,
		SchoolStats:    make([]dto.SchoolCount, len(schools)),
		TitleStats:     make([]dto.TitleCount, len(titles)),
	}
	for i, v := range schools {
		stats.SchoolStats[i] = dto.SchoolCount{School: v.Value, Count: v.Count}
	}
	for i, v := range titles {
		stats.TitleStats[i] = dto.TitleCount{Title: v.Value, Count: v.Count}
	}
	return stats, nil
}

func exportRow(t *models.Tutor) []string {
	funding := "否"
	if t.HasFunding {
		funding = "是"
	}
	recruitment := recruitmentLabels[t.RecruitmentType]
	if recruitment == "" {
		recruitment = string(t.RecruitmentType)
	}
	return []string{
		t.ID,
		t.Name,
		t.Title,
		t.SchoolName,
		t.DepartmentName,
		t.ResearchDirection,
		t.Email,
		t.Phone,
		t.PersonalPageURL,
		recruitment,
		funding,
		fmt.Sprint(t.PaperCount),
		fmt.Sprint(t.ProjectCount),
		strings.Join(t.Tags, ", "),
		t.CreatedAt.Format("2006-01-02 15:04:05"),
		t.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func renderXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSheetRow(f, 1, exportHeader); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(exportSheet, cell, &cells)
}

// renderCSV prefixes a UTF-8 BOM so spreadsheet apps detect the encoding.
func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
