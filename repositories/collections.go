package repositories

const (
	IssuesCollection     = "issues"
	StatusLogsCollection = "status_logs"
	FlagsCollection      = "flags"
	UsersCollection      = "users"
)
