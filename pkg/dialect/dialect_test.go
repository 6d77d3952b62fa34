package dialect

import (
	"testing"

	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	backtick := NewDialect("bt").Identifiers("`", "`", "``").Build()
	ansi := NewDialect("ansi").Build()

	tests := []struct {
		name string
		d    *Dialect
		in   string
		want string
	}{
		{"plain backtick", backtick, "users", "`users`"},
		{"embedded backtick", backtick, "we`ird", "`we``ird`"},
		{"plain ansi", ansi, "users", `"users"`},
		{"embedded double quote", ansi, `a"b`, `"a""b"`},
		{"nul byte dropped", ansi, "a\x00b", `"ab"`},
		{"keyword", ansi, "order", `"order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.QuoteIdentifier(tt.in))
		})
	}
}

func TestQuoteTable(t *testing.T) {
	qualified := NewDialect("q").Identifiers("`", "`", "``").Features(FeatureQualifiedNames).Build()
	flat := NewDialect("f").Build()

	ref := core.TableRef{Database: "shop", Name: "orders"}
	assert.Equal(t, "`shop`.`orders`", qualified.QuoteTable(ref))
	assert.Equal(t, `"orders"`, flat.QuoteTable(ref))
	assert.Equal(t, "`orders`", qualified.QuoteTable(core.Table("orders")))
}

func TestSupports(t *testing.T) {
	d := NewDialect("x").Features(FeatureTruncate, FeatureDatabases).DefaultDatabase("main").Build()
	assert.True(t, d.Supports(FeatureTruncate))
	assert.True(t, d.Supports(FeatureDatabases))
	assert.False(t, d.Supports(FeatureMoveTable))
	assert.Equal(t, "move table", FeatureMoveTable.String())
	assert.Equal(t, "x", d.GetName())
	assert.Equal(t, "main", d.DefaultDatabase)
}
