package core

// Settings represents the main configuration for the application
type Settings struct {
	Codes    []string         // List of codes to chart
	Chart    ChartSettings    // Chart geometry and palette
	Telegram TelegramSettings // Telegram notification settings
}

// ChartSettings holds the pixel geometry and palette of a chart
type ChartSettings struct {
	Padding        float64  // Top and bottom padding of the price pane
	RightMargin    float64  // Right-hand blank area reserved for labels
	CandleWidth    float64  // Candle body width
	CandleMargin   float64  // Gap between two candles
	RiseColor      string   // Colour of bars with close >= open
	FallColor      string   // Colour of bars with close < open
	VolumeHeight   float64  // Height of the volume pane
	VolumeHeadroom float64  // Fraction of the volume pane used by the tallest bar
	MALines        []MALine // Moving averages drawn on the price pane
	Limit          int      // Number of bars kept in the display window
}

// MALine describes one moving average overlay
type MALine struct {
	Name   string
	Period int
	Color  string
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Enabled bool   // Whether Telegram notifications are enabled
	Token   string // Telegram bot token
	Users   []int  // List of authorized user IDs
}

// DefaultChartSettings returns the stock chart layout
func DefaultChartSettings() ChartSettings {
	return ChartSettings{
		Padding:        20,
		RightMargin:    60,
		CandleWidth:    6,
		CandleMargin:   2,
		RiseColor:      "#CA4A47",
		FallColor:      "#56A870",
		VolumeHeight:   100,
		VolumeHeadroom: 0.9,
		MALines: []MALine{
			{Name: "MA5", Period: 5, Color: "#ff9800"},
			{Name: "MA10", Period: 10, Color: "#2196f3"},
			{Name: "MA20", Period: 20, Color: "#9c27b0"},
			{Name: "MA30", Period: 30, Color: "#009688"},
		},
		Limit: 100,
	}
}

// Step is the horizontal distance between two consecutive candles
func (s ChartSettings) Step() float64 {
	return s.CandleWidth + s.CandleMargin
}
