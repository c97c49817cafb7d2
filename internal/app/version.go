package app

const ServiceName = "college-admin-api"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'github.com/Vishwas132/university-admin-panel/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
