package status

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/externals/internal/dependencies"
	"github.com/temirov/externals/internal/execshell"
	"github.com/temirov/externals/internal/externals"
	"github.com/temirov/externals/internal/gitrepo"
	"github.com/temirov/externals/internal/ui"
)

const (
	commandUseConstant   = "status"
	commandShortConstant = "Report the state of every declared external"
	commandLongConstant  = "status probes each declared external repository and classifies it as ok, broken, or uninitialized against its declared url and branch or commit."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective status configuration.
type ConfigurationProvider func() CommandConfiguration

// WorkingDirectoryProvider supplies the directory the command was invoked from.
type WorkingDirectoryProvider func() (string, error)

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the status cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	WorkingDirectoryProvider     WorkingDirectoryProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Executor                     dependencies.CommandExecutor
	RepositoryManager            *gitrepo.RepositoryManager
	FileSystem                   gitrepo.FileSystem
	CommandEventsObserver        execshell.CommandEventObserver
}

// Build constructs the cobra command for the status workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortConstant,
		Long:  commandLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	logger := builder.resolveLogger()

	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, builder.resolveCommandEventsObserver(logger))
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := dependencies.ResolveRepositoryManager(builder.RepositoryManager, executor)
	if managerError != nil {
		return managerError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	if guardError := gitrepo.EnsureTopLevelWorkingDirectory(command.Context(), repositoryManager, workingDirectory); guardError != nil {
		return guardError
	}

	configuration := builder.resolveConfiguration()
	store := externals.NewStore(configuration.ExternalsFile, configuration.IgnoreFile)
	declarations, parseWarnings, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	originURL, originError := repositoryManager.GetRemoteURL(command.Context(), workingDirectory)
	if originError != nil {
		originURL = ""
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	service := NewService(repositoryManager, fileSystem, originURL, command.OutOrStdout(), command.ErrOrStderr())
	return service.Run(command.Context(), declarations, parseWarnings)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if builder.WorkingDirectoryProvider != nil {
		return builder.WorkingDirectoryProvider()
	}
	return os.Getwd()
}

func (builder *CommandBuilder) resolveCommandEventsObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.CommandEventsObserver != nil {
		return builder.CommandEventsObserver
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return ui.NewConsoleCommandEventLogger(logger)
	}
	return nil
}
