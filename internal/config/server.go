package config

// GetListenAddr returns the listen address for the dev server
func GetListenAddr() string {
	return GetEnvOrDefault("PARLEY_LISTEN_ADDR", ":8000")
}
