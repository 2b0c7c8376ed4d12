package config

// Application constants
const (
	AppName    = "salespulse"
	AppVersion = "0.3.0"

	DefaultDataDir    = "data"
	DefaultUploadsDir = "data/uploads"
	DefaultReportsDir = "data/reports"
	DefaultStagingDir = "data/staging"
	DefaultLogsDir    = "logs"

	DefaultLogLevel = "info"

	DefaultMaxUploadBytes = 32 << 20 // 32MB across the three files
)

// DefaultDateLayouts are tried in order when parsing order_date
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}
