// Package dependencies provides default wiring for command builders: each
// resolver returns the caller-supplied implementation when present and a
// production default otherwise.
package dependencies

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/externals/internal/execshell"
	"github.com/temirov/externals/internal/gitrepo"
)

// CommandExecutor runs git and shell subprocesses.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default.
func ResolveCommandExecutor(existing CommandExecutor, logger *zap.Logger, eventObserver execshell.CommandEventObserver) (CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	if eventObserver != nil {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, eventObserver)
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

// ResolveRepositoryManager returns the provided manager or constructs one from the executor.
func ResolveRepositoryManager(existing *gitrepo.RepositoryManager, executor gitrepo.GitExecutor) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing gitrepo.FileSystem) gitrepo.FileSystem {
	if existing != nil {
		return existing
	}
	return gitrepo.OSFileSystem{}
}
