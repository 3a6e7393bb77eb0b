package database

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppDirName       = ".route-optimizer"
	SQLiteDBFileName = "routes.db"
	CacheFileName    = "routes.json"
	ConfigFileName   = "config.yaml"
)

// GetAppDir returns ~/.route-optimizer, creating it if needed
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, AppDirName)
	if err := os.MkdirAll(appDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create app directory: %w", err)
	}

	return appDir, nil
}

// GetDefaultDBPath returns the default SQLite cache path: ~/.route-optimizer/routes.db
func GetDefaultDBPath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, SQLiteDBFileName), nil
}

// GetDefaultCacheFilePath returns the JSON cache path: ~/.route-optimizer/routes.json
func GetDefaultCacheFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, CacheFileName), nil
}

// GetConfigFilePath returns ~/.route-optimizer/config.yaml
func GetConfigFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, ConfigFileName), nil
}
