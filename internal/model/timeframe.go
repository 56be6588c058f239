package model

import (
	"fmt"
	"strings"
)

// Timeframe maps a user-facing label to a provider range and bar interval.
type Timeframe struct {
	Label    string `json:"label"`
	Range    string `json:"range"`
	Interval string `json:"interval"`
}

// Timeframes lists the selectable timeframes in menu order.
var Timeframes = []Timeframe{
	{Label: "Today (Intraday)", Range: "1d", Interval: "5m"},
	{Label: "1 Day", Range: "5d", Interval: "1d"},
	{Label: "1 Week", Range: "1mo", Interval: "1h"},
	{Label: "1 Month", Range: "3mo", Interval: "1d"},
	{Label: "3 Months", Range: "6mo", Interval: "1d"},
	{Label: "6 Months", Range: "1y", Interval: "1d"},
	{Label: "1 Year", Range: "1y", Interval: "1d"},
	{Label: "5 Years", Range: "5y", Interval: "1d"},
}

// LookupTimeframe finds a timeframe by label, case-insensitively.
func LookupTimeframe(label string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if strings.EqualFold(tf.Label, strings.TrimSpace(label)) {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("unknown timeframe %q", label)
}
