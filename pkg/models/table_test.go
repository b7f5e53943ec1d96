package models_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/strix-project/strix/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableColumnOrder(t *testing.T) {
	table := models.NewTable([]models.Row{
		{"host": "h1", "action": "login"},
		{"host": "h2", "user": "alice"},
	})

	// First row's keys are sorted, later rows only append new columns.
	assert.Equal(t, []string{"action", "host", "user"}, table.Columns())
	assert.Equal(t, 2, table.Length())
	assert.Equal(t, "h1", table.Get(0, "host"))
	assert.Equal(t, "alice", table.Get(1, "user"))
	assert.Nil(t, table.Get(0, "user"))
}

func TestTableFlattenNested(t *testing.T) {
	table := models.NewTable([]models.Row{
		{
			"tag": "test.log",
			"geo": map[string]interface{}{
				"country": "JP",
				"city":    map[string]interface{}{"name": "Tokyo"},
			},
		},
	})

	assert.Equal(t, []string{"geo.city.name", "geo.country", "tag"}, table.Columns())
	assert.Equal(t, "Tokyo", table.Get(0, "geo.city.name"))
	assert.Equal(t, "JP", table.Get(0, "geo.country"))
}

func TestTableEmpty(t *testing.T) {
	table := models.NewTable(nil)
	assert.True(t, table.IsEmpty())
	assert.Equal(t, 0, table.Length())
	assert.Nil(t, table.Get(0, "any"))

	raw, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"columns":[],"rows":[]}`, string(raw))
}

func TestTableWriteCSV(t *testing.T) {
	table := models.NewTable([]models.Row{
		{"name": "a", "count": 1},
		{"name": "b"},
	})

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	assert.Equal(t, "count,name\n1,a\n,b\n", buf.String())
}

func TestTableMarshalJSON(t *testing.T) {
	table := models.NewTable([]models.Row{{"name": "a"}})

	raw, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded struct {
		Columns []string     `json:"columns"`
		Rows    []models.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"name"}, decoded.Columns)
	require.Equal(t, 1, len(decoded.Rows))
	assert.Equal(t, "a", decoded.Rows[0]["name"])
}
