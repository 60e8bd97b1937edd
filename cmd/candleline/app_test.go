package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/market"
)

func TestParseDate(t *testing.T) {
	at, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	at, err = parseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, market.Shanghai), at)

	_, err = parseDate("04/03/2024")
	assert.Error(t, err)
}

func TestBuildDownloadOptions(t *testing.T) {
	options, err := buildDownloadOptions(10, "", "", 2)
	require.NoError(t, err)
	assert.Len(t, options, 2)

	options, err = buildDownloadOptions(0, "2024-01-01", "2024-02-01", 0)
	require.NoError(t, err)
	assert.Len(t, options, 1)

	_, err = buildDownloadOptions(0, "2024-01-01", "", 0)
	assert.Error(t, err)
}

func TestLineFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	var price float64
	cmd.Flags().Float64Var(&price, "price", 0, "")
	require.NoError(t, cmd.Flags().Set("price", "12.5"))

	line, err := lineFromFlags(cmd, "sh600519", "1d", price, "", 0, "", 0)
	require.NoError(t, err)
	assert.Equal(t, core.LineHorizontal, line.Kind)
	assert.Equal(t, 12.5, line.Price)

	segment, err := lineFromFlags(&cobra.Command{}, "SH600519", "1d", 0, "2024-03-04", 10, "2024-03-08", 12)
	require.NoError(t, err)
	assert.Equal(t, core.LineSegment, segment.Kind)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, market.Shanghai).UnixMilli(), segment.StartTime)

	_, err = lineFromFlags(&cobra.Command{}, "SH600519", "1d", 0, "", 10, "", 12)
	assert.ErrorIs(t, err, core.ErrInvalidLine)
}
