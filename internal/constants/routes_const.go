package constants

// Top level paths
const (
	HealthPath = "/health"
	UploadPath = "/upload"
)

// User routes
const (
	UsersBasePath     = "/users"
	UserLoginPath     = "/login"
	UserLogoutPath    = "/logout"
	UserLogoutAllPath = "/logoutAll"
	UserProfilePath   = "/me"
	UserAvatarPath    = "/me/avatar"
	UserByIDPath      = "/{id}"
	UserAvatarByID    = "/{id}/avatar"
)

// Task routes
const (
	TasksBasePath = "/tasks"
	TaskByIDPath  = "/{id}"
)

// URL parameters
const (
	ParamID = "id"
)
