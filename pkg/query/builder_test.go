package query

import (
	"testing"

	"github.com/leapstack-labs/dabiro/internal/testutil"
	"github.com/leapstack-labs/dabiro/pkg/adapters/mysql"
	"github.com/leapstack-labs/dabiro/pkg/adapters/postgres"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []core.Column{
	{Name: "id", Type: "int"},
	{Name: "name", Type: "varchar(50)"},
	{Name: "email", Type: "varchar(100)"},
}

func TestBuilder_Select(t *testing.T) {
	b := NewBuilder(mysql.New(nil), testutil.NewTestLogger(t))

	tests := []struct {
		name      string
		req       core.QueryRequest
		wantQuery string
		wantCount string
	}{
		{
			name:      "plain page",
			req:       core.QueryRequest{Table: "users", Limit: 50, Offset: 100},
			wantQuery: "SELECT * FROM `users` LIMIT 50 OFFSET 100",
			wantCount: "SELECT COUNT(*) FROM `users`",
		},
		{
			name: "filters and sort",
			req: core.QueryRequest{
				Table: "users",
				Filters: []core.Filter{
					{Column: "name", Operator: core.OpStartsWith, Value: "al"},
					{Column: "id", Operator: core.OpEquals, Value: "7"},
				},
				Sort:  &core.Sort{Column: "email", Direction: core.SortDesc},
				Limit: 10,
			},
			wantQuery: "SELECT * FROM `users` WHERE `name` LIKE 'al%' AND `id` = '7' ORDER BY `email` DESC LIMIT 10 OFFSET 0",
			wantCount: "SELECT COUNT(*) FROM `users` WHERE `name` LIKE 'al%' AND `id` = '7'",
		},
		{
			name: "unknown columns are dropped",
			req: core.QueryRequest{
				Table:          "users",
				Filters:        []core.Filter{{Column: "password", Operator: core.OpEquals, Value: "x"}},
				ColumnSearches: map[string]string{"ghost": "boo"},
				Sort:           &core.Sort{Column: "1; DROP TABLE users", Direction: core.SortAsc},
				Limit:          5,
			},
			wantQuery: "SELECT * FROM `users` LIMIT 5 OFFSET 0",
			wantCount: "SELECT COUNT(*) FROM `users`",
		},
		{
			name: "column searches sorted by column name",
			req: core.QueryRequest{
				Table:          "users",
				Filters:        []core.Filter{{Column: "id", Operator: core.OpNotEquals, Value: "1"}},
				ColumnSearches: map[string]string{"name": "ann", "email": "example", "id": ""},
				Limit:          5,
			},
			wantQuery: "SELECT * FROM `users` WHERE `id` != '1' AND `email` LIKE '%example%' AND `name` LIKE '%ann%' LIMIT 5 OFFSET 0",
			wantCount: "SELECT COUNT(*) FROM `users` WHERE `id` != '1' AND `email` LIKE '%example%' AND `name` LIKE '%ann%'",
		},
		{
			name: "injection attempt is quoted",
			req: core.QueryRequest{
				Table:   "users",
				Filters: []core.Filter{{Column: "name", Operator: core.OpEquals, Value: "' OR '1'='1"}},
				Limit:   5,
			},
			wantQuery: "SELECT * FROM `users` WHERE `name` = '\\' OR \\'1\\'=\\'1' LIMIT 5 OFFSET 0",
			wantCount: "SELECT COUNT(*) FROM `users` WHERE `name` = '\\' OR \\'1\\'=\\'1'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Select(tt.req, userColumns)
			assert.Equal(t, tt.wantQuery, got.Query)
			assert.Equal(t, tt.wantCount, got.Count)
		})
	}
}

func TestBuilder_SelectPostgres(t *testing.T) {
	b := NewBuilder(postgres.New(nil), nil)
	got := b.Select(core.QueryRequest{
		Table:   "users",
		Filters: []core.Filter{{Column: "id", Operator: core.OpContains, Value: "4"}, {Column: "name", Operator: core.OpRegex, Value: "^a"}},
		Limit:   20,
		Offset:  40,
	}, userColumns)
	assert.Equal(t, `SELECT * FROM "users" WHERE CAST("id" AS TEXT) ILIKE '%4%' AND "name" ~ '^a' LIMIT 20 OFFSET 40`, got.Query)
}

func TestBuilder_Insert(t *testing.T) {
	b := NewBuilder(mysql.New(nil), nil)

	got, err := b.Insert("users", core.Record{"email": "a@example.com", "name": "O'Brien", "id": nil, "ghost": "x"}, userColumns)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`id`, `name`, `email`) VALUES (NULL, 'O\\'Brien', 'a@example.com')", got)

	_, err = b.Insert("users", core.Record{"ghost": "x"}, userColumns)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestBuilder_Update(t *testing.T) {
	b := NewBuilder(mysql.New(nil), nil)

	got, err := b.Update("users", core.Record{
		"name":      "Bob",
		"email":     "bob@example.com",
		"old_id":    "2",
		"old_name":  "Bobby",
		"old_email": nil,
	}, userColumns)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = 'Bob', `email` = 'bob@example.com' WHERE `id` = '2' AND `name` = 'Bobby' AND `email` IS NULL", got)

	_, err = b.Update("users", core.Record{"name": "Bob"}, userColumns)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = b.Update("users", core.Record{"old_name": "Bob"}, userColumns)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestBuilder_Delete(t *testing.T) {
	b := NewBuilder(postgres.New(nil), nil)

	got, err := b.Delete("users", core.Record{"id": 3, "name": "it's", "email": nil}, userColumns)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" = '3' AND "name" = 'it''s' AND "email" IS NULL`, got)

	_, err = b.Delete("users", core.Record{}, userColumns)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestBuilder_FieldsWithoutColumns(t *testing.T) {
	b := NewBuilder(mysql.New(nil), nil)
	got, err := b.Insert("t", core.Record{"b": "2", "a": "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `t` (`a`, `b`) VALUES ('1', '2')", got)
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"-- comment\nSHOW TABLES", true},
		{"/* hint */ WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"PRAGMA table_info(t)", true},
		{"EXPLAIN SELECT 1", true},
		{"DESCRIBE users", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"CREATE TABLE t (id INT)", false},
		{"-- only a comment", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReturnsRows(tt.sql), tt.sql)
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(map[string]any{
		"table": "users",
		"filters": []map[string]any{
			{"column": "name", "operator": "=", "value": "ann"},
			{"column": "email", "operator": "bogus", "value": "x"},
		},
		"column_searches": map[string]any{"email": "example"},
		"sort":            map[string]any{"column": "id", "direction": "desc"},
		"limit":           "25",
		"page":            "3",
	}, 50)
	require.NoError(t, err)

	assert.Equal(t, "users", req.Table)
	require.Len(t, req.Filters, 2)
	assert.Equal(t, core.OpEquals, req.Filters[0].Operator)
	assert.Equal(t, core.OpContains, req.Filters[1].Operator)
	assert.Equal(t, map[string]string{"email": "example"}, req.ColumnSearches)
	require.NotNil(t, req.Sort)
	assert.Equal(t, core.SortDesc, req.Sort.Direction)
	assert.Equal(t, 25, req.Limit)
	assert.Equal(t, 50, req.Offset)

	req, err = DecodeRequest(map[string]any{"table": "users"}, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, req.Limit)
	assert.Nil(t, req.Sort)

	_, err = DecodeRequest(map[string]any{"limit": 10}, 50)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = DecodeRequest(map[string]any{"table": "users", "offset": -1}, 50)
	assert.ErrorIs(t, err, core.ErrValidation)
}
