package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/externals/internal/utils"
)

type loaderTestConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
	Externals struct {
		ConfigFile    string   `mapstructure:"config_file"`
		DefaultBranch string   `mapstructure:"default_branch"`
		SkipPaths     []string `mapstructure:"skip_paths"`
	} `mapstructure:"externals"`
}

func TestConfigurationLoaderAppliesDefaultsWhenFileMissing(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader("config", "yaml", "EXTERNALS", []string{testInstance.TempDir()})

	defaults := map[string]any{
		"common.log_level":         "info",
		"common.log_format":        "structured",
		"externals.config_file":    ".gitexternals",
		"externals.default_branch": "master",
	}

	var loadedConfiguration loaderTestConfiguration
	metadata, loadError := loader.LoadConfiguration("", defaults, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Empty(testInstance, metadata.ConfigFileUsed)
	require.Equal(testInstance, "info", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, ".gitexternals", loadedConfiguration.Externals.ConfigFile)
	require.Equal(testInstance, "master", loadedConfiguration.Externals.DefaultBranch)
}

func TestConfigurationLoaderReadsExplicitFileAndDecodesLists(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, "config.yaml")
	configurationContent := "common:\n  log_level: debug\n  log_format: console\nexternals:\n  config_file: .externals\n  skip_paths: vendor/a,vendor/b\n"
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o644))

	loader := utils.NewConfigurationLoader("config", "yaml", "EXTERNALS", []string{temporaryDirectory})

	var loadedConfiguration loaderTestConfiguration
	metadata, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{}, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "console", loadedConfiguration.Common.LogFormat)
	require.Equal(testInstance, ".externals", loadedConfiguration.Externals.ConfigFile)
	require.Equal(testInstance, []string{"vendor/a", "vendor/b"}, loadedConfiguration.Externals.SkipPaths)
}
