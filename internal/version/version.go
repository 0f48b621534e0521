package version

var (
	AppName        = "Community Ops"
	AppDescription = "Cross-guild moderation and onboarding bot for the Magonila Project community."
	AppVersion     = "1.0.0"
)
