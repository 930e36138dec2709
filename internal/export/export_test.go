package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dmelats/loanbook/internal/model"
)

func sampleDetail() model.LoanDetail {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return model.LoanDetail{
		Loan: model.Loan{
			ID:              7,
			LoanName:        "Bridge loan",
			UserID:          1,
			Capital:         10000,
			MonthlyInterest: 0.02,
			AnnualInterest:  0.24,
			Timeline:        12,
			Currency:        "EUR",
			LegalExpenses:   150,
			TotalProfit:     2400,
			Status:          model.LoanStatusActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		Clients: []model.LoanClientDetail{
			{ClientID: 3, HasPaid: true, Client: &model.Client{ID: 3, FirstName: "Maria", LastName: "Kostas"}},
			{ClientID: 9, HasPaid: false}, // deleted after the loan was written
		},
		Owner: &model.Profile{ID: 1, FirstName: "Dina", LastName: "M"},
	}
}

func TestRenderPDF(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderPDF(sampleDetail(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".pdf"), "got %s", path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	head := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))
}

func TestRenderExcel(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderExcel(sampleDetail(), dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".xlsx"), "got %s", path)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.ElementsMatch(t, []string{"Loan Details", "Clients"}, wb.GetSheetList())

	name, err := wb.GetCellValue("Loan Details", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Loan ID", name)
	val, err := wb.GetCellValue("Loan Details", "B3")
	require.NoError(t, err)
	assert.Equal(t, "7", val)

	// the dangling entry still shows up, by reference
	first, err := wb.GetCellValue("Clients", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Maria Kostas", first)
	second, err := wb.GetCellValue("Clients", "A4")
	require.NoError(t, err)
	assert.Equal(t, "deleted client #9", second)
}

func TestFileNamesDoNotCollide(t *testing.T) {
	a := fileName(7, "pdf")
	b := fileName(7, "pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "loan_7_"))
}

func TestClientName(t *testing.T) {
	assert.Equal(t, "Maria Kostas", clientName(model.LoanClientDetail{
		Client: &model.Client{FirstName: "Maria", LastName: "Kostas"}}))
	assert.Equal(t, "Maria", clientName(model.LoanClientDetail{
		Client: &model.Client{FirstName: "Maria"}}))
	assert.Equal(t, "deleted client #9", clientName(model.LoanClientDetail{ClientID: 9}))
}
