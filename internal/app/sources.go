package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"cryptoWallet/internal/adapters/csvfile"
	"cryptoWallet/internal/adapters/jsonfile"
	"cryptoWallet/internal/ports"
)

// OpenFile returns the loader matching the extension of path: .csv files are read as CSV,
// everything else as a JSON array.
func OpenFile(path string, logger ports.Logger) (ports.TransactionSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("transaction file path is required: %w", ports.ErrConfigurationError)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvfile.NewLoader(csvfile.Config{Path: path, Logger: logger})
	default:
		return jsonfile.New(jsonfile.Config{Path: path, Logger: logger})
	}
}
