package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantHeaders []string
		wantRows    [][]string
		wantErr     bool
	}{
		{
			name:        "simple csv",
			text:        "Date,Amount,Description\n2025-01-02,10.00,COFFEE\n2025-01-03,20.00,BOOKS\n",
			wantHeaders: []string{"Date", "Amount", "Description"},
			wantRows: [][]string{
				{"2025-01-02", "10.00", "COFFEE"},
				{"2025-01-03", "20.00", "BOOKS"},
			},
		},
		{
			name:        "leading BOM is stripped",
			text:        "\uFEFFDate,Amount\n2025-01-02,10.00\n",
			wantHeaders: []string{"Date", "Amount"},
			wantRows:    [][]string{{"2025-01-02", "10.00"}},
		},
		{
			name:        "short rows are padded",
			text:        "Date,Amount,Description\n2025-01-02,10.00\n",
			wantHeaders: []string{"Date", "Amount", "Description"},
			wantRows:    [][]string{{"2025-01-02", "10.00", ""}},
		},
		{
			name:        "quoted cells keep embedded commas",
			text:        "Date,Description\n2025-01-02,\"A, B\"\n",
			wantHeaders: []string{"Date", "Description"},
			wantRows:    [][]string{{"2025-01-02", "A, B"}},
		},
		{
			name:    "unbalanced quote fails the call",
			text:    "Date,Description\n2025-01-02,\"broken\n",
			wantErr: true,
		},
		{
			name: "empty input",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, doc.Headers)
			assert.Equal(t, tt.wantRows, doc.Rows)
		})
	}
}

func TestParseBank(t *testing.T) {
	text := "Some Bank Export\nGenerated 2025-01-31\n" +
		"Transaction Type,Date Posted,Transaction Amount,Description\n" +
		"DEBIT,2025-01-02,-10.00,COFFEE\n" +
		"CREDIT,2025-01-05,2000.00,PAYROLL\n"

	doc, err := ParseBank(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"Transaction Type", "Date Posted", "Transaction Amount", "Description"}, doc.Headers)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, []string{"DEBIT", "2025-01-02", "-10.00", "COFFEE"}, doc.Rows[0])
}

func TestParseBank_NoMarkerRow(t *testing.T) {
	doc, err := ParseBank("just,a,regular\ncsv,with,no\nbank,header,line\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Headers)
	assert.Empty(t, doc.Rows)
}

func TestParseBank_EmptyInput(t *testing.T) {
	doc, err := ParseBank("")
	require.NoError(t, err)
	assert.Empty(t, doc.Headers)
	assert.Empty(t, doc.Rows)
}

func TestReadRows_UnderSplitFallback(t *testing.T) {
	// a single cell still holding commas gets re-split
	rows, err := readRows("\"DEBIT,2025-01-02,-10.00\"\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"DEBIT", "2025-01-02", "-10.00"}, rows[0])
}

func TestReadRows_SkipsBlankLines(t *testing.T) {
	rows, err := readRows("a,b\n\n ,\nc,d\n")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
}
