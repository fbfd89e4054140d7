package workflows

import "strings"

const (
	defaultExternalsFileNameConstant = ".gitexternals"
	defaultIgnoreFileNameConstant    = ".gitignore"
	defaultBranchNameConstant        = "master"
)

// CommandConfiguration captures persistent settings shared by the repository operation commands.
type CommandConfiguration struct {
	ExternalsFile string `mapstructure:"externals_file"`
	IgnoreFile    string `mapstructure:"ignore_file"`
	DefaultBranch string `mapstructure:"default_branch"`
	AssumeYes     bool   `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration returns baseline configuration values for the operation commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ExternalsFile: defaultExternalsFileNameConstant,
		IgnoreFile:    defaultIgnoreFileNameConstant,
		DefaultBranch: defaultBranchNameConstant,
		AssumeYes:     false,
	}
}

// DefaultConfigurationValues exposes viper defaults for the operation commands under the given key prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".externals_file": defaults.ExternalsFile,
		configurationKeyPrefix + ".ignore_file":    defaults.IgnoreFile,
		configurationKeyPrefix + ".default_branch": defaults.DefaultBranch,
		configurationKeyPrefix + ".assume_yes":     defaults.AssumeYes,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.ExternalsFile = strings.TrimSpace(configuration.ExternalsFile)
	if len(sanitized.ExternalsFile) == 0 {
		sanitized.ExternalsFile = defaultExternalsFileNameConstant
	}

	sanitized.IgnoreFile = strings.TrimSpace(configuration.IgnoreFile)
	if len(sanitized.IgnoreFile) == 0 {
		sanitized.IgnoreFile = defaultIgnoreFileNameConstant
	}

	sanitized.DefaultBranch = strings.TrimSpace(configuration.DefaultBranch)
	if len(sanitized.DefaultBranch) == 0 {
		sanitized.DefaultBranch = defaultBranchNameConstant
	}

	return sanitized
}
