package config

var (
	// BackendBaseURL is the base URL of the assistant backend API.
	// Defaults to the local dev server if not set in environment.
	BackendBaseURL = GetEnvOrDefault("PARLEY_BACKEND_URL", "http://localhost:8000/api/v1")
)

// GetBackendBaseURL returns the configured backend base URL
func GetBackendBaseURL() string {
	return BackendBaseURL
}

// SetBackendBaseURL temporarily changes the backend base URL and returns a function to restore it
// This is primarily used for testing
func SetBackendBaseURL(url string) func() {
	previous := BackendBaseURL
	BackendBaseURL = url

	return func() {
		BackendBaseURL = previous
	}
}
