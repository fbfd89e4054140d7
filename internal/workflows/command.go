package workflows

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/externals/internal/dependencies"
	"github.com/temirov/externals/internal/execshell"
	"github.com/temirov/externals/internal/externals"
	"github.com/temirov/externals/internal/gitrepo"
	"github.com/temirov/externals/internal/ui"
)

const (
	allExternalsSelectorConstant = "all"

	initCommandUseConstant   = "init [<name>|all]"
	initCommandShortConstant = "Clone and check out declared externals"
	updateCommandUseConstant = "update [<name>|all]"
	updateCommandShortConst  = "Bring initialized externals to their declared targets"
	resetCommandUseConstant  = "reset [<name>|all]"
	resetCommandShortConst   = "Hard reset externals to their declared targets, discarding local changes"
	runCommandUseConstant    = "cmd <shell-command>"
	runCommandShortConstant  = "Run a shell command inside every initialized external"
	listCommandUseConstant   = "list"
	listCommandShortConstant = "Print every declared external"
	headsCommandUseConstant  = "heads"
	headsCommandShortConst   = "Print each initialized external's remote default branch"
	addCommandUseConstant    = "add <url> <path> [<branch-or-commit>]"
	addCommandShortConstant  = "Declare a new external and ignore its path"
	removeCommandUseConstant = "rm <path>"
	removeCommandShortConst  = "Remove a declared external"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective workflow configuration.
type ConfigurationProvider func() CommandConfiguration

// WorkingDirectoryProvider supplies the directory the command was invoked from.
type WorkingDirectoryProvider func() (string, error)

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the repository operation cobra commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	WorkingDirectoryProvider     WorkingDirectoryProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Executor                     dependencies.CommandExecutor
	RepositoryManager            *gitrepo.RepositoryManager
	FileSystem                   gitrepo.FileSystem
	Prompter                     ConfirmationPrompter
	CommandEventsObserver        execshell.CommandEventObserver
}

// commandEnvironment bundles the dependencies resolved once per command run.
type commandEnvironment struct {
	repositoryManager *gitrepo.RepositoryManager
	executor          dependencies.CommandExecutor
	fileSystem        gitrepo.FileSystem
	store             *externals.Store
	configuration     CommandConfiguration
	originURL         string
}

// BuildInitCommand constructs the cobra command for the init workflow.
func (builder *CommandBuilder) BuildInitCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runSelected(command, arguments, func(service *Service, declarations []externals.Declaration) error {
				return service.InitAll(command.Context(), declarations)
			})
		},
	}, nil
}

// BuildUpdateCommand constructs the cobra command for the update workflow.
func (builder *CommandBuilder) BuildUpdateCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortConst,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runSelected(command, arguments, func(service *Service, declarations []externals.Declaration) error {
				return service.UpdateAll(command.Context(), declarations)
			})
		},
	}, nil
}

// BuildResetCommand constructs the cobra command for the reset workflow.
func (builder *CommandBuilder) BuildResetCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   resetCommandUseConstant,
		Short: resetCommandShortConst,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runSelected(command, arguments, func(service *Service, declarations []externals.Declaration) error {
				return service.ResetAll(command.Context(), declarations)
			})
		},
	}, nil
}

// BuildRunCommand constructs the cobra command for the cmd workflow.
func (builder *CommandBuilder) BuildRunCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			environment, service, environmentError := builder.prepare(command)
			if environmentError != nil {
				return environmentError
			}
			declarations, loadError := builder.loadDeclarations(environment)
			if loadError != nil {
				return loadError
			}
			return service.RunShellCommand(command.Context(), declarations, strings.Join(arguments, " "))
		},
	}, nil
}

// BuildListCommand constructs the cobra command for the list workflow.
func (builder *CommandBuilder) BuildListCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			environment, service, environmentError := builder.prepare(command)
			if environmentError != nil {
				return environmentError
			}
			declarations, loadError := builder.loadDeclarations(environment)
			if loadError != nil {
				return loadError
			}
			service.List(declarations)
			return nil
		},
	}, nil
}

// BuildHeadsCommand constructs the cobra command for the heads workflow.
func (builder *CommandBuilder) BuildHeadsCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   headsCommandUseConstant,
		Short: headsCommandShortConst,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			environment, service, environmentError := builder.prepare(command)
			if environmentError != nil {
				return environmentError
			}
			declarations, loadError := builder.loadDeclarations(environment)
			if loadError != nil {
				return loadError
			}
			return service.Heads(command.Context(), declarations)
		},
	}, nil
}

// BuildAddCommand constructs the cobra command that declares a new external.
func (builder *CommandBuilder) BuildAddCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   addCommandUseConstant,
		Short: addCommandShortConstant,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(command *cobra.Command, arguments []string) error {
			environment, _, environmentError := builder.prepare(command)
			if environmentError != nil {
				return environmentError
			}

			remoteURL := arguments[0]
			relativePath := arguments[1]
			branchOrCommit := environment.configuration.DefaultBranch
			if len(arguments) == 3 {
				branchOrCommit = arguments[2]
			}

			return environment.store.Add(relativePath, remoteURL, relativePath, branchOrCommit)
		},
	}, nil
}

// BuildRemoveCommand constructs the cobra command that removes a declared external.
func (builder *CommandBuilder) BuildRemoveCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   removeCommandUseConstant,
		Short: removeCommandShortConst,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			environment, _, environmentError := builder.prepare(command)
			if environmentError != nil {
				return environmentError
			}
			return environment.store.Remove(arguments[0])
		},
	}, nil
}

func (builder *CommandBuilder) runSelected(command *cobra.Command, arguments []string, operation func(*Service, []externals.Declaration) error) error {
	environment, service, environmentError := builder.prepare(command)
	if environmentError != nil {
		return environmentError
	}

	declarations, loadError := builder.loadDeclarations(environment)
	if loadError != nil {
		return loadError
	}

	selectedDeclarations, selectionError := selectDeclarations(declarations, arguments)
	if selectionError != nil {
		return selectionError
	}

	return operation(service, selectedDeclarations)
}

// prepare resolves dependencies, enforces the top-level working directory guard, and
// assembles the Service for one command run.
func (builder *CommandBuilder) prepare(command *cobra.Command) (commandEnvironment, *Service, error) {
	logger := builder.resolveLogger()

	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, builder.resolveCommandEventsObserver(logger))
	if executorError != nil {
		return commandEnvironment{}, nil, executorError
	}

	repositoryManager, managerError := dependencies.ResolveRepositoryManager(builder.RepositoryManager, executor)
	if managerError != nil {
		return commandEnvironment{}, nil, managerError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return commandEnvironment{}, nil, workingDirectoryError
	}

	if guardError := gitrepo.EnsureTopLevelWorkingDirectory(command.Context(), repositoryManager, workingDirectory); guardError != nil {
		return commandEnvironment{}, nil, guardError
	}

	configuration := builder.resolveConfiguration()
	originURL := builder.resolveOriginURL(command.Context(), repositoryManager, workingDirectory)

	environment := commandEnvironment{
		repositoryManager: repositoryManager,
		executor:          executor,
		fileSystem:        dependencies.ResolveFileSystem(builder.FileSystem),
		store:             externals.NewStore(configuration.ExternalsFile, configuration.IgnoreFile),
		configuration:     configuration,
		originURL:         originURL,
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	service := NewService(repositoryManager, executor, environment.fileSystem, prompter, configuration, originURL, command.OutOrStdout(), command.ErrOrStderr())
	return environment, service, nil
}

func (builder *CommandBuilder) loadDeclarations(environment commandEnvironment) ([]externals.Declaration, error) {
	declarations, _, loadError := environment.store.Load()
	return declarations, loadError
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

// resolveOriginURL looks up the host repository origin. A repository without an origin
// remote is still usable, so lookup failures degrade to an empty origin.
func (builder *CommandBuilder) resolveOriginURL(executionContext context.Context, repositoryManager *gitrepo.RepositoryManager, workingDirectory string) string {
	originURL, originError := repositoryManager.GetRemoteURL(executionContext, workingDirectory)
	if originError != nil {
		return ""
	}
	return originURL
}

func selectDeclarations(declarations []externals.Declaration, arguments []string) ([]externals.Declaration, error) {
	if len(arguments) == 0 || arguments[0] == allExternalsSelectorConstant {
		return declarations, nil
	}

	for _, declaration := range declarations {
		if declaration.Name == arguments[0] {
			return []externals.Declaration{declaration}, nil
		}
	}
	return nil, externals.DeclarationNotFoundError{Name: arguments[0]}
}
