package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/export"
	"github.com/noah-isme/hostel-outing-api/pkg/storage"
)

type exportOutings interface {
	Get(ctx context.Context, requestID string, scope models.ViewerScope) (*models.OutingRequest, error)
	ListHistory(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error)
	ApprovalHistory(ctx context.Context, query dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(relPath string) (io.ReadCloser, error)
}

// ExportArtifact describes a generated file together with its signed
// download token.
type ExportArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Token       string `json:"token"`
}

// ExportService renders approval slips and tabular history exports, stores
// the files locally, and hands out signed download tokens.
type ExportService struct {
	outings exportOutings
	pdf     *export.PDFExporter
	csv     *export.CSVExporter
	files   exportStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(outings exportOutings, files exportStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		outings: outings,
		pdf:     export.NewPDFExporter(),
		csv:     export.NewCSVExporter(),
		files:   files,
		signer:  signer,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ApprovalSlip renders the printable slip for an approved request.
// Only approved requests have slips.
func (s *ExportService) ApprovalSlip(ctx context.Context, requestID string, scope models.ViewerScope) (*ExportArtifact, error) {
	req, err := s.outings.Get(ctx, requestID, scope)
	if err != nil {
		return nil, err
	}
	if req.FinalStatus != models.StatusApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "approval slips are only available for approved requests")
	}

	entries, err := s.outings.ApprovalHistory(ctx, dto.HistoryQuery{RequestID: requestID})
	if err != nil {
		return nil, err
	}

	slip := export.SlipData{
		Title:     "Outing Approval Slip",
		Fields:    slipFields(req),
		Decisions: decisionTable(entries),
		FooterRef: req.ID,
	}
	data, err := s.pdf.RenderSlip(slip)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render approval slip")
	}

	filename := fmt.Sprintf("slips/%s.pdf", req.ID)
	return s.store(scope.UserID, filename, "application/pdf", data)
}

// HistoryCSV exports the viewer's entitled request history as CSV.
func (s *ExportService) HistoryCSV(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) (*ExportArtifact, error) {
	if query.Limit <= 0 || query.Limit > 1000 {
		query.Limit = 1000
	}
	requests, _, err := s.outings.ListHistory(ctx, scope, query)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"id", "student_id", "type", "destination", "from_date", "to_date", "stage", "status", "created_at"},
	}
	for _, req := range requests {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":          req.ID,
			"student_id":  req.StudentID,
			"type":        string(req.OutingType),
			"destination": req.Destination,
			"from_date":   req.FromDate.Format("2006-01-02"),
			"to_date":     req.ToDate.Format("2006-01-02"),
			"stage":       string(req.CurrentStage),
			"status":      string(req.FinalStatus),
			"created_at":  req.CreatedAt.Format(time.RFC3339),
		})
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render history csv")
	}

	filename := fmt.Sprintf("history/%s-%d.csv", scope.UserID, s.now().Unix())
	return s.store(scope.UserID, filename, "text/csv", data)
}

// Download validates a signed token and streams back the stored file.
func (s *ExportService) Download(viewerID, token string) (io.ReadCloser, string, error) {
	ownerID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	if ownerID != viewerID {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download token belongs to a different user")
	}
	reader, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return reader, contentTypeFor(relPath), nil
}

func (s *ExportService) store(ownerID, filename, contentType string, data []byte) (*ExportArtifact, error) {
	if _, err := s.files.Save(filename, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to store export")
	}
	token, _, err := s.signer.Generate(ownerID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}
	return &ExportArtifact{Filename: filename, ContentType: contentType, Token: token}, nil
}

func slipFields(req *models.OutingRequest) []export.SlipField {
	fields := []export.SlipField{
		{Label: "Request ID", Value: req.ID},
		{Label: "Student", Value: req.StudentID},
		{Label: "Type", Value: string(req.OutingType)},
		{Label: "Destination", Value: req.Destination},
		{Label: "From", Value: req.FromDate.Format("2006-01-02")},
		{Label: "To", Value: req.ToDate.Format("2006-01-02")},
		{Label: "Reason", Value: req.Reason},
	}
	if req.FromTime != nil && req.ToTime != nil {
		fields = append(fields, export.SlipField{Label: "Hours", Value: *req.FromTime + " - " + *req.ToTime})
	}
	if req.ContactPerson != nil {
		fields = append(fields, export.SlipField{Label: "Contact", Value: *req.ContactPerson})
	}
	if req.ContactPhone != nil {
		fields = append(fields, export.SlipField{Label: "Contact phone", Value: *req.ContactPhone})
	}
	fields = append(fields, export.SlipField{Label: "Status", Value: strings.ToUpper(string(req.FinalStatus))})
	return fields
}

func decisionTable(entries []models.ApprovalHistoryEntry) export.Dataset {
	dataset := export.Dataset{Headers: []string{"stage", "action", "approver", "comments", "decided_at"}}
	for _, entry := range entries {
		comments := ""
		if entry.Comments != nil {
			comments = *entry.Comments
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"stage":      string(entry.Stage),
			"action":     string(entry.Action),
			"approver":   entry.ApproverID,
			"comments":   comments,
			"decided_at": entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return dataset
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(path, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
