package domain

// Viewer is an authenticated dashboard user.
type Viewer struct {
	Username string
}
