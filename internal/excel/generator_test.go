package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/veeduria/obras-service/internal/model"
)

func TestGenerateProgressStatement(t *testing.T) {
	contractID := uuid.New()
	statement := model.ProgressStatement{
		Contract: model.Contract{
			ID:             contractID,
			Name:           "Pavimentación urbana fase II",
			InitialValue:   1_000_000_000,
			CommittedValue: 1_300_000_000,
			StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			CurrentEndDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Entries: []model.ContractProgressEntry{
			{
				Report: model.ContractProgress{
					ID:              uuid.New(),
					ContractID:      contractID,
					Value:           100_000_000,
					PhysicalPercent: 12.5,
					Note:            "instalación de campamento",
					CreatedAt:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
				},
				AccumulatedValue:           100_000_000,
				AccumulatedPhysicalPercent: 12.5,
				FinancialPercent:           7.69,
				Delta:                      4.81,
				Status:                     model.ProgressOnTrack,
			},
		},
	}

	content, err := NewGenerator().Generate(statement)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	require.Contains(t, sheets, "Resumen")
	require.Contains(t, sheets, "Avances")

	name, err := file.GetCellValue("Resumen", "B1")
	require.NoError(t, err)
	require.Equal(t, statement.Contract.Name, name)
}
