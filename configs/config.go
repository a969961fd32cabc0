package config

import "os"

type Snarf struct {
	Command  string
	Username string
	Browser  string
}

type Config struct {
	ListenAddr   string
	DatabasePath string
	LibraryPath  string
	UploadPath   string
	SecretKey    string
	Snarf        Snarf
}

func LoadConfig() *Config {
	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":3000"),
		DatabasePath: getEnv("DATABASE_PATH", "data/promura.db"),
		LibraryPath:  getEnv("LIBRARY_PATH", "data/library"),
		UploadPath:   getEnv("UPLOAD_PATH", "data/uploads"),
		SecretKey:    getEnv("SECRET_KEY", ""),
		Snarf: Snarf{
			Command:  getEnv("SNARF_COMMAND", "snarf"),
			Username: getEnv("SNARF_USERNAME", ""),
			Browser:  getEnv("SNARF_BROWSER", "chrome"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
