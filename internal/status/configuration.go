package status

import "strings"

const (
	defaultExternalsFileNameConstant = ".gitexternals"
	defaultIgnoreFileNameConstant    = ".gitignore"
)

// CommandConfiguration captures persistent settings for the status command.
type CommandConfiguration struct {
	ExternalsFile string `mapstructure:"externals_file"`
	IgnoreFile    string `mapstructure:"ignore_file"`
}

// DefaultCommandConfiguration returns baseline configuration values for the status command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ExternalsFile: defaultExternalsFileNameConstant,
		IgnoreFile:    defaultIgnoreFileNameConstant,
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

	return sanitized
}
