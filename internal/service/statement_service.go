package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veeduria/obras-service/internal/model"
)

type ExcelGenerator interface {
	Generate(statement model.ProgressStatement) ([]byte, error)
}

type PDFGenerator interface {
	Generate(statement model.LedgerStatement) ([]byte, error)
}

// StatementService assembles export documents from the same stores the
// engines use, so exported figures always match what the API returns.
type StatementService struct {
	progress      ProgressStore
	additions     AdditionStore
	modifications ModificationStore
	gate          AccessGate
	excel         ExcelGenerator
	pdf           PDFGenerator
}

func NewStatementService(
	progress ProgressStore,
	additions AdditionStore,
	modifications ModificationStore,
	gate AccessGate,
	excel ExcelGenerator,
	pdf PDFGenerator,
) *StatementService {
	return &StatementService{
		progress:      progress,
		additions:     additions,
		modifications: modifications,
		gate:          gate,
		excel:         excel,
		pdf:           pdf,
	}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *StatementService) ExportProgress(ctx context.Context, contractID uuid.UUID, p model.Principal) (*ExportResult, error) {
	if err := s.gate.Authorize(ctx, p, contractID, ActionRead); err != nil {
		return nil, err
	}

	contract, err := s.progress.GetContract(ctx, contractID)
	if err != nil {
		return nil, notFound(err, "contract")
	}

	reports, err := s.progress.ListContractReports(ctx, contractID)
	if err != nil {
		return nil, err
	}

	statement := model.ProgressStatement{
		Contract:    *contract,
		GeneratedAt: time.Now().UTC(),
		Entries:     buildContractEntries(*contract, reports),
	}

	content, err := s.excel.Generate(statement)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: buildExportFileName("avance", contract.Name, contract.ID, "xlsx"),
		Content:  content,
	}, nil
}

func (s *StatementService) ExportLedger(ctx context.Context, contractID uuid.UUID, p model.Principal) (*ExportResult, error) {
	if err := s.gate.Authorize(ctx, p, contractID, ActionRead); err != nil {
		return nil, err
	}

	contract, err := s.progress.GetContract(ctx, contractID)
	if err != nil {
		return nil, notFound(err, "contract")
	}

	additions, err := s.additions.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	modifications, err := s.modifications.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	statement := model.LedgerStatement{
		Contract:      *contract,
		GeneratedAt:   time.Now().UTC(),
		Additions:     additions,
		Modifications: modifications,
	}

	content, err := s.pdf.Generate(statement)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: buildExportFileName("balance", contract.Name, contract.ID, "pdf"),
		Content:  content,
	}, nil
}

func buildExportFileName(kind, name string, id uuid.UUID, ext string) string {
	target := sanitizeFileName(name)
	if target == "" {
		target = id.String()
	}
	stamp := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s.%s", kind, target, stamp, ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
