package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/viper"
)

// StoreSpec declares one named vector store backed by a Qdrant collection.
type StoreSpec struct {
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

// LoadStores reads the stores manifest. A missing manifest is not an error:
// the server can run without retrieval and answers "no relevant information
// found" on retrieval-routed queries.
func LoadStores(path string) ([]StoreSpec, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Warn("stores manifest not found, retrieval disabled", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("reading stores manifest: %w", err)
	}

	var specs []StoreSpec
	if err := v.UnmarshalKey("stores", &specs); err != nil {
		return nil, fmt.Errorf("parsing stores manifest: %w", err)
	}

	for i, s := range specs {
		if s.Name == "" || s.Collection == "" {
			return nil, fmt.Errorf("stores[%d]: name and collection are required", i)
		}
	}

	slog.Info("stores manifest loaded", "path", path, "stores", len(specs))
	return specs, nil
}
