package handlers

import "github.com/hocine1592/offlinesteamweb/internal/config"

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	Debug            bool
}

// AnalyticsFromConfig builds Analytics from site settings. Dev servers run
// the tag in debug mode.
func AnalyticsFromConfig(cfg config.Config) Analytics {
	return Analytics{
		GA4MeasurementID: cfg.Site.GAMeasurementID,
		Debug:            cfg.Server.Dev,
	}
}
