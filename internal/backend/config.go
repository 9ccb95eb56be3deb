package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:            t,
		DataDir:         appConfig.DataDir,
		SQLiteDBPath:    appConfig.SQLiteDBPath,
		SpreadsheetID:   appConfig.GoogleSpreadsheetID,
		CredentialsJSON: appConfig.GoogleServiceAccountJSON,
		CredentialsFile: appConfig.GoogleServiceAccountFile,
		SheetNames:      appConfig.SheetNames(),
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case Sheets:
		if c.SpreadsheetID == "" {
			return errors.New("spreadsheet ID is required for sheets backend")
		}
		if c.CredentialsJSON == "" && c.CredentialsFile == "" {
			return errors.New("service account JSON or file is required for sheets backend")
		}
	case Memory:
		// DataDir defaults to "data".
	}

	return nil
}

// Types returns every backend type.
func Types() []Type {
	return []Type{Memory, Sheets, SQLite}
}
