package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendLine_JSON(t *testing.T) {
	t.Run("segment keeps anchors", func(t *testing.T) {
		line := NewSegment("SH600519", "day", 100, 50, 200, 70)
		line.ID = 3

		data, err := json.Marshal(line)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":3,"code":"SH600519","period":"day","kind":"segment",
			"startTime":100,"startPrice":50,"endTime":200,"endPrice":70}`, string(data))

		var decoded TrendLine
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, *line, decoded)
	})

	t.Run("horizontal writes a single price", func(t *testing.T) {
		data, err := json.Marshal(NewHorizontal("SZ000001", "week", 12.5))
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":0,"code":"SZ000001","period":"week","kind":"horizontal","price":12.5}`, string(data))
	})

	t.Run("untagged price record is horizontal", func(t *testing.T) {
		var line TrendLine
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"code":"A","period":"day","price":9.9}`), &line))
		assert.Equal(t, LineHorizontal, line.Kind)
		assert.Equal(t, 9.9, line.Price)
	})

	t.Run("zero price segment is kept", func(t *testing.T) {
		var line TrendLine
		require.NoError(t, json.Unmarshal([]byte(
			`{"id":1,"code":"A","period":"day","startTime":1,"startPrice":0,"endTime":2,"endPrice":0}`), &line))
		assert.Equal(t, LineSegment, line.Kind)
		assert.True(t, line.Flat())
	})

	t.Run("missing anchor is invalid", func(t *testing.T) {
		var line TrendLine
		err := json.Unmarshal([]byte(`{"id":1,"code":"A","period":"day","kind":"segment","startTime":1}`), &line)
		assert.ErrorIs(t, err, ErrInvalidLine)
	})

	t.Run("pixel record is rejected", func(t *testing.T) {
		var line TrendLine
		err := json.Unmarshal([]byte(`{"id":7,"code":"A","period":"day","x1":1,"y1":2,"x2":3,"y2":4}`), &line)
		assert.ErrorIs(t, err, ErrPixelAnchored)
	})
}

func TestDecodeLine(t *testing.T) {
	line, legacy, err := DecodeLine([]byte(`{"id":2,"code":"A","period":"day","kind":"horizontal","price":3}`))
	require.NoError(t, err)
	require.Nil(t, legacy)
	assert.Equal(t, 3.0, line.Price)

	line, legacy, err = DecodeLine([]byte(
		`{"id":7,"code":"A","period":"day","x1":10,"y1":20,"x2":30,"y2":40,"width":400,"height":300}`))
	require.True(t, errors.Is(err, ErrPixelAnchored))
	require.Nil(t, line)
	require.NotNil(t, legacy)
	assert.Equal(t, LegacyPixelLine{ID: 7, Code: "A", Period: "day", X1: 10, Y1: 20, X2: 30, Y2: 40, Width: 400, Height: 300}, *legacy)
}

func TestTrendLine_Validate(t *testing.T) {
	assert.NoError(t, NewSegment("A", "day", 1, 1, 2, 2).Validate())
	assert.NoError(t, NewHorizontal("A", "day", 1).Validate())
	assert.ErrorIs(t, NewSegment("", "day", 1, 1, 2, 2).Validate(), ErrInvalidLine)
	assert.ErrorIs(t, NewSegment("A", "day", 0, 1, 2, 2).Validate(), ErrInvalidLine)
	assert.ErrorIs(t, (&TrendLine{Code: "A", Period: "day", Kind: "ray"}).Validate(), ErrInvalidLine)
}
