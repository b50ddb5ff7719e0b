package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prepacolles/colle-scheduler/internal/colle"
	"github.com/prepacolles/colle-scheduler/internal/models"
	"github.com/prepacolles/colle-scheduler/pkg/export"
	"github.com/prepacolles/colle-scheduler/pkg/storage"
)

type collePlanningReader interface {
	GetByID(ctx context.Context, id string) (*models.CollePlanning, error)
}

type catalogDomainReader interface {
	LoadDomainInternal(ctx context.Context, catalogID string) (colle.Catalog, *models.ColleCatalog, error)
}

type excelRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ColleExportConfig tunes export behaviour.
type ColleExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ColleExportResult captures successful generation metadata.
type ColleExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ColleExportFormat
	ExpiresAt    time.Time
}

// ColleExportService renders a planning's assignment table into a
// downloadable file (csv, pdf, or excel), adapted from the teacher's report
// export pipeline.
type ColleExportService struct {
	plannings collePlanningReader
	catalogs  catalogDomainReader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	excel     excelRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ColleExportConfig
}

// NewColleExportService constructs a ColleExportService.
func NewColleExportService(plannings collePlanningReader, catalogs catalogDomainReader, fs fileStorage, signer *storage.SignedURLSigner, cfg ColleExportConfig, logger *zap.Logger) *ColleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ColleExportService{
		plannings: plannings,
		catalogs:  catalogs,
		storage:   fs,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		excel:     export.NewExcelExporter(),
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds the export dataset for a planning and persists the
// rendered file, returning a signed download URL.
func (s *ColleExportService) Generate(ctx context.Context, job *models.ColleExportJob) (*ColleExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	planning, err := s.plannings.GetByID(ctx, job.PlanningID)
	if err != nil {
		return nil, fmt.Errorf("load planning %s: %w", job.PlanningID, err)
	}
	catalog, _, err := s.catalogs.LoadDomainInternal(ctx, planning.CatalogID)
	if err != nil {
		return nil, fmt.Errorf("load catalog for planning %s: %w", job.PlanningID, err)
	}

	table, err := colle.ParseAssignmentCSV(planning.AssignmentCSV)
	if err != nil {
		return nil, fmt.Errorf("parse stored assignment: %w", err)
	}
	assignment, _ := colle.ParseAssignmentCells(catalog, table)
	dataset := buildPlanningDataset(catalog, assignment)
	title := job.Params.Title
	if title == "" {
		title = "Planning de colles"
	}

	var payload []byte
	switch job.Params.Format {
	case models.ColleExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ColleExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case models.ColleExportFormatExcel:
		payload, err = s.excel.Render(dataset)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/colle/exports/%s/download?token=%s", prefix, job.ID, token)

	return &ColleExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open returns a handle to the stored file.
func (s *ColleExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ColleExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ColleExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// ParseToken validates a download token.
func (s *ColleExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

func (s *ColleExportService) buildFilename(job *models.ColleExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	ext := string(job.Params.Format)
	if job.Params.Format == models.ColleExportFormatExcel {
		ext = "xlsx"
	}
	return fmt.Sprintf("colle_planning_%s_%s.%s", job.PlanningID, timestamp, ext)
}

func buildPlanningDataset(catalog colle.Catalog, assignment colle.Assignment) export.Dataset {
	headers := make([]string, 0, 4+len(catalog.Weeks))
	headers = append(headers, "Matiere", "Prof", "Jour", "Heure")
	for _, w := range catalog.Weeks {
		headers = append(headers, strconv.Itoa(w.Number))
	}

	rows := make([]map[string]string, 0, len(catalog.Slots))
	for si, slot := range catalog.Slots {
		row := map[string]string{
			"Matiere": slot.Subject,
			"Prof":    slot.Teacher,
			"Jour":    slot.Day,
			"Heure":   formatSlotHour(slot.StartMin, slot.EndMin),
		}
		for _, w := range catalog.Weeks {
			if g, ok := assignment.Get(si, w.Number); ok {
				row[strconv.Itoa(w.Number)] = strconv.Itoa(g)
			} else {
				row[strconv.Itoa(w.Number)] = ""
			}
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

func formatSlotHour(startMin, endMin int) string {
	return fmt.Sprintf("%dh%02d-%dh%02d", startMin/60, startMin%60, endMin/60, endMin%60)
}
