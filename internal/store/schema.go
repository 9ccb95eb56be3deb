package store

import (
	"errors"
	"strings"

	"fintrack/internal/core"
)

// Canonical column names, in the order rows are written.
const (
	ColID                = "ID"
	ColDate              = "Date"
	ColCategory          = "Category"
	ColIncomeType        = "IncomeType"
	ColAmount            = "Amount"
	ColDescription       = "Description"
	ColPaymentMethod     = "PaymentMethod"
	ColCard              = "Card"
	ColInstallmentCount  = "InstallmentCount"
	ColInstallmentIndex  = "InstallmentIndex"
	ColGroupID           = "GroupID"
	ColType              = "Type"
	ColCategoryName      = "CategoryName"
	ColPaymentMethodName = "PaymentMethodName"
	ColCardName          = "CardName"
)

var errMissingColumn = errors.New("missing column")

// Column is one positional column of a table. Aliases are alternative
// header labels accepted on read, such as the Portuguese ones of older
// workbooks.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Schema is the fixed column order of one table kind. Rows are written
// positionally: reordering columns here silently corrupts existing sheets.
type Schema struct {
	Kind    core.Kind
	Columns []Column
}

var schemas = map[core.Kind]Schema{
	core.KindIncome: {Kind: core.KindIncome, Columns: []Column{
		{Name: ColID},
		{Name: ColDate, Aliases: []string{"Data"}, Required: true},
		{Name: ColCategory, Aliases: []string{"Categoria"}},
		{Name: ColIncomeType, Aliases: []string{"Tipo_Receita", "Tipo"}},
		{Name: ColAmount, Aliases: []string{"Valor"}, Required: true},
		{Name: ColDescription, Aliases: []string{"Descrição", "Descricao"}},
	}},
	core.KindExpense: {Kind: core.KindExpense, Columns: []Column{
		{Name: ColID},
		{Name: ColDate, Aliases: []string{"Data"}, Required: true},
		{Name: ColCategory, Aliases: []string{"Categoria"}},
		{Name: ColPaymentMethod, Aliases: []string{"Forma_Pagamento"}},
		{Name: ColCard, Aliases: []string{"Cartao", "Cartão"}},
		{Name: ColAmount, Aliases: []string{"Valor"}, Required: true},
		{Name: ColInstallmentCount, Aliases: []string{"Parcelas"}, Required: true},
		{Name: ColInstallmentIndex, Aliases: []string{"Parcela_Atual"}, Required: true},
		{Name: ColGroupID, Aliases: []string{"ID_Grupo_Parcelado"}},
		{Name: ColDescription, Aliases: []string{"Descrição", "Descricao"}},
	}},
	core.KindCategory: {Kind: core.KindCategory, Columns: []Column{
		{Name: ColType, Aliases: []string{"Tipo"}, Required: true},
		{Name: ColCategoryName, Aliases: []string{"Nome_Categoria"}, Required: true},
	}},
	core.KindPaymentMethod: {Kind: core.KindPaymentMethod, Columns: []Column{
		{Name: ColPaymentMethodName, Aliases: []string{"Tipo_Pagamento"}, Required: true},
	}},
	core.KindCard: {Kind: core.KindCard, Columns: []Column{
		{Name: ColCardName, Aliases: []string{"Nome_Cartao"}, Required: true},
	}},
}

// SchemaFor returns the schema of kind. Unknown kinds yield an empty schema.
func SchemaFor(kind core.Kind) Schema {
	return schemas[kind]
}

// Headers returns the canonical header row.
func (s Schema) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Width is the number of columns.
func (s Schema) Width() int { return len(s.Columns) }

// LastColumn returns the A1 letter of the last column, e.g. "J".
func (s Schema) LastColumn() string {
	return ColumnLetter(len(s.Columns))
}

// ColumnLetter converts a 1-based column number to its A1 letters.
func ColumnLetter(n int) string {
	if n < 1 {
		return "A"
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// index maps canonical column names to their position in header. A required
// column that cannot be located is a DataFormatError.
func (s Schema) index(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[normalizeHeader(h)] = i
	}

	idx := make(map[string]int, len(s.Columns))
	for _, c := range s.Columns {
		found := -1
		for _, label := range append([]string{c.Name}, c.Aliases...) {
			if i, ok := pos[normalizeHeader(label)]; ok {
				found = i
				break
			}
		}
		if found < 0 {
			if c.Required {
				return nil, &core.DataFormatError{Kind: s.Kind, Column: c.Name, Err: errMissingColumn}
			}
			continue
		}
		idx[c.Name] = found
	}
	return idx, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
