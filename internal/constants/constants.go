package constants

import "time"

// Session
const (
	ContextKeyUserID  = "user_id"
	SessionCookieName = "tracker_session"
	SessionMaxAge     = 86400 * 7
)

// Authentication
const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Validation limits
const (
	MaxBoardNameLength       = 200
	MaxSectionNameLength     = 100
	MaxTaskTitleLength       = 500
	MaxTaskDescriptionLength = 5000
	MaxTagsPerTask           = 20
	MaxTagLength             = 50
	MaxIconLength            = 64
	MaxSuggestionTextLength  = 10000
)

// Inbox is the grouping key used for tasks without a board.
const InboxKey = "inbox"

// DefaultSectionNames are provisioned, in order, for every new board.
var DefaultSectionNames = []string{"To Do", "In Progress", "Done"}

// Defaults for configurable durations
const (
	DefaultBoardCacheTTL     = 5 * time.Minute
	DefaultTimerPollInterval = 5 * time.Second
)

// AI
const MaxAIGeneratedTasks = 20
