package rendering

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateEngine(t *testing.T) {
	engine := NewTemplateEngine()
	assert.NotNil(t, engine)
	assert.NotNil(t, engine.funcMap)
}

func TestTemplateEngine_GetFuncMap(t *testing.T) {
	engine := NewTemplateEngine()
	funcMap := engine.GetFuncMap()

	// Check essential functions exist
	assert.NotNil(t, funcMap["formatMoney"])
	assert.NotNil(t, funcMap["formatMoneyRaw"])
	assert.NotNil(t, funcMap["formatPercent"])
	assert.NotNil(t, funcMap["formatDecimal"])
	assert.NotNil(t, funcMap["isNegative"])
	assert.NotNil(t, funcMap["add"])
	assert.NotNil(t, funcMap["sub"])
	assert.NotNil(t, funcMap["mul"])
	assert.NotNil(t, funcMap["div"])
}

func TestTemplateEngine_RenderString_Simple(t *testing.T) {
	engine := NewTemplateEngine()
	ctx := context.Background()

	html, err := engine.RenderString(ctx, "test",
		`<html><body>Hello, {{.Name}}!</body></html>`,
		map[string]interface{}{"Name": "World"})

	require.NoError(t, err)
	assert.Contains(t, html, "Hello, World!")
}

func TestTemplateEngine_RenderString_EmptyContent(t *testing.T) {
	engine := NewTemplateEngine()
	ctx := context.Background()

	_, err := engine.RenderString(ctx, "test", "", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "template content is empty")
}

func TestTemplateEngine_RenderString_InvalidTemplate(t *testing.T) {
	engine := NewTemplateEngine()
	ctx := context.Background()

	// Missing closing braces
	_, err := engine.RenderString(ctx, "test", `{{.Name`, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestTemplateEngine_RenderString_WithFormatting(t *testing.T) {
	engine := NewTemplateEngine()
	ctx := context.Background()

	data := map[string]interface{}{
		"Revenue": decimal.NewFromFloat(1234567.891),
		"Margin":  decimal.NewFromFloat(0.1525),
	}

	html, err := engine.RenderString(ctx, "test",
		`<p>{{ formatMoney .Revenue }} at {{ formatPercent .Margin 1 }}</p>`, data)

	require.NoError(t, err)
	assert.Contains(t, html, "$1,234,567.89")
	assert.Contains(t, html, "15.3%")
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"positive with separators", decimal.NewFromFloat(1234.56), "$1,234.56"},
		{"negative", decimal.NewFromFloat(-987.5), "-$987.50"},
		{"zero", decimal.Zero, "$0.00"},
		{"millions", decimal.NewFromInt(2500000), "$2,500,000.00"},
		{"string input", "42.1", "$42.10"},
		{"int input", 7, "$7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMoney(tt.input))
		})
	}
}

func TestFormatMoneyRaw(t *testing.T) {
	assert.Equal(t, "1,234.56", formatMoneyRaw(decimal.NewFromFloat(1234.56)))
	assert.Equal(t, "-1,234.56", formatMoneyRaw(decimal.NewFromFloat(-1234.56)))
	assert.Equal(t, "0.00", formatMoneyRaw(decimal.Zero))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "15.0%", formatPercent(decimal.NewFromFloat(0.15), 1))
	assert.Equal(t, "8.25%", formatPercent(decimal.NewFromFloat(0.0825), 2))
	assert.Equal(t, "-3.0%", formatPercent(decimal.NewFromFloat(-0.03), 1))
}

func TestArithmeticFuncs(t *testing.T) {
	a := decimal.NewFromInt(10)
	b := decimal.NewFromInt(4)

	assert.True(t, decimal.NewFromInt(14).Equal(add(a, b)))
	assert.True(t, decimal.NewFromInt(6).Equal(sub(a, b)))
	assert.True(t, decimal.NewFromInt(40).Equal(mul(a, b)))
	assert.True(t, decimal.NewFromFloat(2.5).Equal(div(a, b)))

	// Division by zero yields zero instead of panicking
	assert.True(t, decimal.Zero.Equal(div(a, decimal.Zero)))
}

func TestSeq(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, seq(3))
	assert.Empty(t, seq(0))
	assert.Empty(t, seq(-1))
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected decimal.Decimal
	}{
		{"decimal", decimal.NewFromInt(5), decimal.NewFromInt(5)},
		{"int", 5, decimal.NewFromInt(5)},
		{"int64", int64(5), decimal.NewFromInt(5)},
		{"float64", 5.5, decimal.NewFromFloat(5.5)},
		{"string", "5.5", decimal.NewFromFloat(5.5)},
		{"invalid string", "not-a-number", decimal.Zero},
		{"nil pointer", (*decimal.Decimal)(nil), decimal.Zero},
		{"unsupported type", struct{}{}, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(toDecimal(tt.input)))
		})
	}
}
