package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionQuizzesRead allows viewing quizzes with their answer keys.
	PermissionQuizzesRead Permission = "quizzes:read"

	// PermissionQuizzesWrite allows creating, updating, and deleting quizzes.
	PermissionQuizzesWrite Permission = "quizzes:write"

	// PermissionQuizzesPublish allows activating and deactivating quizzes for students.
	PermissionQuizzesPublish Permission = "quizzes:publish"

	// PermissionResultsRead allows viewing submitted attempt results.
	PermissionResultsRead Permission = "quiz_results:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionQuizzesRead,
	PermissionQuizzesWrite,
	PermissionQuizzesPublish,
	PermissionResultsRead,
}

// PermissionCodes returns AllPermissions as plain strings, the form embedded in tokens.
func PermissionCodes() []string {
	codes := make([]string, len(AllPermissions))
	for i, p := range AllPermissions {
		codes[i] = string(p)
	}
	return codes
}
