package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvision/internal/core"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantType []core.Type
		wantCats []core.Category
		wantSort core.SortKey
		wantDesc bool
	}{
		{
			name:  "empty query passes everything",
			query: "",
		},
		{
			name:     "repeated values",
			query:    "type=Expense&category=Food&category=Rent",
			wantType: []core.Type{core.Expense},
			wantCats: []core.Category{core.Food, core.Rent},
		},
		{
			name:     "comma separated and case insensitive",
			query:    "type=income,expense&category=educational%20fees",
			wantType: []core.Type{core.Income, core.Expense},
			wantCats: []core.Category{core.EducationalFees},
		},
		{
			name:     "unknown values ignored",
			query:    "type=Gift&category=Pets&sort=colour&dir=sideways",
			wantSort: core.SortNone,
		},
		{
			name:     "sort descending",
			query:    "sort=amount&dir=DESC",
			wantSort: core.SortAmount,
			wantDesc: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			q := ParseQuery(values)
			assert.Equal(t, tt.wantType, q.Filter.Types)
			assert.Equal(t, tt.wantCats, q.Filter.Categories)
			assert.Equal(t, tt.wantSort, q.Sort)
			assert.Equal(t, tt.wantDesc, q.Desc)
		})
	}
}

func TestRequestBodyParserForm(t *testing.T) {
	body := "date=2024-01-05&type=Expense&category=Food&amount=12.50&description=%20lunch%00%20"
	r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(r)
	require.NoError(t, p.Parse())
	assert.False(t, p.IsJSON())
	assert.Equal(t, core.TransactionInput{
		Date: "2024-01-05", Type: "Expense", Category: "Food", Amount: "12.50", Description: "lunch",
	}, p.TransactionInput())
}

func TestRequestBodyParserJSON(t *testing.T) {
	body := `{"type":"Income","category":"Salary","amount":2500,"description":"pay"}`
	r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r)
	require.NoError(t, p.Parse())
	assert.True(t, p.IsJSON())
	in := p.TransactionInput()
	assert.Equal(t, "2500", in.Amount)
	assert.Equal(t, "", in.Date)
	assert.Equal(t, "Salary", in.Category)
}

func TestRequestBodyParserBadJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{"amount":`))
	p := NewRequestBodyParser(r)
	assert.Error(t, p.Parse())
	assert.Error(t, p.Parse(), "parse result is cached")
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	resp := RequirePOST(r)
	require.NotNil(t, resp)

	w := httptest.NewRecorder()
	resp.Write(w)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))

	assert.Nil(t, RequireGET(r))
}
