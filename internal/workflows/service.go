package workflows

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/temirov/externals/internal/execshell"
	"github.com/temirov/externals/internal/externals"
	"github.com/temirov/externals/internal/gitrepo"
)

const (
	headReferenceMarkerConstant       = "HEAD"
	parentDirectoryPermissionConstant = 0o755
	shellCommandFlagConstant          = "-c"

	entryFailureTemplateConstant      = "%s: %v\n"
	dirtyWorktreeTemplateConstant     = "%s has uncommitted changes, refusing to update"
	entryFailuresTemplateConstant     = "%d external(s) failed"
	resetConfirmationTemplateConstant = "reset discards local changes in %d external(s), continue? [y/N] "
	resetDeclinedMessageConstant      = "reset aborted\n"
	commandHeaderTemplateConstant     = "=== %s\n"
	listEntryTemplateConstant         = "%s\t%s\t(%s %s)\n"
	headsEntryTemplateConstant        = "%s\t%s\n"
	branchTargetLabelConstant         = "branch"
	commitTargetLabelConstant         = "commit"
)

// DirtyWorktreeError reports an update refused because of uncommitted changes.
type DirtyWorktreeError struct {
	Path string
}

// Error describes the refusal.
func (dirtyError DirtyWorktreeError) Error() string {
	return fmt.Sprintf(dirtyWorktreeTemplateConstant, dirtyError.Path)
}

// EntryFailuresError reports how many externals failed during a bulk operation.
type EntryFailuresError struct {
	FailedCount int
}

// Error describes the aggregate failure.
func (failuresError EntryFailuresError) Error() string {
	return fmt.Sprintf(entryFailuresTemplateConstant, failuresError.FailedCount)
}

// GitRepositoryManager exposes the repository operations used by the workflows.
type GitRepositoryManager interface {
	IsWorktreeDirty(executionContext context.Context, repositoryPath string) (bool, error)
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error
	FetchRemote(executionContext context.Context, repositoryPath string) error
	PullBranch(executionContext context.Context, repositoryPath string) error
	CheckoutReference(executionContext context.Context, repositoryPath string, reference string) error
	CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string) error
	HardReset(executionContext context.Context, repositoryPath string, reference string) error
	LocalBranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error)
	ResolveDefaultBranch(executionContext context.Context, repositoryPath string) (string, error)
}

// ShellRunner executes shell commands inside external repositories.
type ShellRunner interface {
	ExecuteShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Service performs the init, update, reset, cmd, list, and heads operations over declared externals.
type Service struct {
	repositoryManager GitRepositoryManager
	shellRunner       ShellRunner
	fileSystem        gitrepo.FileSystem
	prompter          ConfirmationPrompter
	configuration     CommandConfiguration
	originURL         string
	outputWriter      io.Writer
	errorWriter       io.Writer
}

// NewService constructs a workflows Service. The origin URL of the host repository is used to
// normalize relative declared URLs and may be empty when unavailable.
func NewService(repositoryManager GitRepositoryManager, shellRunner ShellRunner, fileSystem gitrepo.FileSystem, prompter ConfirmationPrompter, configuration CommandConfiguration, originURL string, outputWriter io.Writer, errorWriter io.Writer) *Service {
	return &Service{
		repositoryManager: repositoryManager,
		shellRunner:       shellRunner,
		fileSystem:        fileSystem,
		prompter:          prompter,
		configuration:     configuration.sanitize(),
		originURL:         originURL,
		outputWriter:      outputWriter,
		errorWriter:       errorWriter,
	}
}

// InitAll initializes every declaration, continuing past per-entry failures.
func (service *Service) InitAll(executionContext context.Context, declarations []externals.Declaration) error {
	return service.forEachDeclaration(declarations, func(declaration externals.Declaration) error {
		return service.Init(executionContext, declaration)
	})
}

// Init clones and checks out one declared external. Already initialized externals are left untouched.
func (service *Service) Init(executionContext context.Context, declaration externals.Declaration) error {
	repositoryExists, existenceError := gitrepo.RepositoryExists(service.fileSystem, declaration.Path)
	if existenceError != nil {
		return existenceError
	}
	if repositoryExists {
		return nil
	}

	parentDirectory := filepath.Dir(declaration.Path)
	if directoryError := service.fileSystem.MkdirAll(parentDirectory, parentDirectoryPermissionConstant); directoryError != nil {
		return directoryError
	}

	remoteURL, resolutionError := gitrepo.ResolveRemoteURL(service.originURL, declaration.URL)
	if resolutionError != nil {
		return resolutionError
	}

	if cloneError := service.repositoryManager.CloneRepository(executionContext, remoteURL, declaration.Path); cloneError != nil {
		return cloneError
	}

	return service.checkoutTarget(executionContext, declaration)
}

// UpdateAll updates every declaration, continuing past per-entry failures.
func (service *Service) UpdateAll(executionContext context.Context, declarations []externals.Declaration) error {
	return service.forEachDeclaration(declarations, func(declaration externals.Declaration) error {
		return service.Update(executionContext, declaration)
	})
}

// Update refreshes an initialized external to its declared target. Missing repositories are
// skipped; dirty worktrees are refused before any git command runs against them.
func (service *Service) Update(executionContext context.Context, declaration externals.Declaration) error {
	repositoryExists, existenceError := gitrepo.RepositoryExists(service.fileSystem, declaration.Path)
	if existenceError != nil {
		return existenceError
	}
	if !repositoryExists {
		return nil
	}

	worktreeDirty, dirtyError := service.repositoryManager.IsWorktreeDirty(executionContext, declaration.Path)
	if dirtyError != nil {
		return dirtyError
	}
	if worktreeDirty {
		return DirtyWorktreeError{Path: declaration.Path}
	}

	return service.checkoutTarget(executionContext, declaration)
}

// ResetAll asks for a single confirmation and then hard resets every initialized external.
func (service *Service) ResetAll(executionContext context.Context, declarations []externals.Declaration) error {
	if !service.configuration.AssumeYes {
		confirmed, confirmationError := service.prompter.Confirm(fmt.Sprintf(resetConfirmationTemplateConstant, len(declarations)))
		if confirmationError != nil {
			return confirmationError
		}
		if !confirmed {
			fmt.Fprint(service.outputWriter, resetDeclinedMessageConstant)
			return nil
		}
	}

	return service.forEachDeclaration(declarations, func(declaration externals.Declaration) error {
		return service.Reset(executionContext, declaration)
	})
}

// Reset forces an initialized external back to its declared target, discarding local changes.
func (service *Service) Reset(executionContext context.Context, declaration externals.Declaration) error {
	repositoryExists, existenceError := gitrepo.RepositoryExists(service.fileSystem, declaration.Path)
	if existenceError != nil {
		return existenceError
	}
	if !repositoryExists {
		return nil
	}

	if fetchError := service.repositoryManager.FetchRemote(executionContext, declaration.Path); fetchError != nil {
		return fetchError
	}
	if resetError := service.repositoryManager.HardReset(executionContext, declaration.Path, headReferenceMarkerConstant); resetError != nil {
		return resetError
	}

	if service.hasCommitTarget(declaration) {
		return service.repositoryManager.CheckoutReference(executionContext, declaration.Path, declaration.Commit)
	}

	branchName := service.effectiveBranch(declaration)
	if ensureError := service.ensureTrackingBranch(executionContext, declaration.Path, branchName); ensureError != nil {
		return ensureError
	}
	if checkoutError := service.repositoryManager.CheckoutReference(executionContext, declaration.Path, branchName); checkoutError != nil {
		return checkoutError
	}
	return service.repositoryManager.HardReset(executionContext, declaration.Path, gitrepo.RemoteTrackingReference(branchName))
}

// RunShellCommand executes the given shell command inside every initialized external.
func (service *Service) RunShellCommand(executionContext context.Context, declarations []externals.Declaration, shellCommand string) error {
	return service.forEachDeclaration(declarations, func(declaration externals.Declaration) error {
		repositoryExists, existenceError := gitrepo.RepositoryExists(service.fileSystem, declaration.Path)
		if existenceError != nil {
			return existenceError
		}
		if !repositoryExists {
			return nil
		}

		fmt.Fprintf(service.outputWriter, commandHeaderTemplateConstant, declaration.Name)
		executionResult, executionError := service.shellRunner.ExecuteShell(executionContext, execshell.CommandDetails{
			Arguments:        []string{shellCommandFlagConstant, shellCommand},
			WorkingDirectory: declaration.Path,
		})
		if len(executionResult.StandardOutput) > 0 {
			fmt.Fprint(service.outputWriter, executionResult.StandardOutput)
		}
		if len(executionResult.StandardError) > 0 {
			fmt.Fprint(service.errorWriter, executionResult.StandardError)
		}
		return executionError
	})
}

// List prints every declaration with its url and target.
func (service *Service) List(declarations []externals.Declaration) {
	for _, declaration := range declarations {
		targetLabel := branchTargetLabelConstant
		targetValue := service.effectiveBranch(declaration)
		if service.hasCommitTarget(declaration) {
			targetLabel = commitTargetLabelConstant
			targetValue = declaration.Commit
		}
		fmt.Fprintf(service.outputWriter, listEntryTemplateConstant, declaration.Name, declaration.URL, targetLabel, targetValue)
	}
}

// Heads prints the resolved remote default branch of every initialized external.
func (service *Service) Heads(executionContext context.Context, declarations []externals.Declaration) error {
	return service.forEachDeclaration(declarations, func(declaration externals.Declaration) error {
		repositoryExists, existenceError := gitrepo.RepositoryExists(service.fileSystem, declaration.Path)
		if existenceError != nil {
			return existenceError
		}
		if !repositoryExists {
			return nil
		}

		defaultBranch, resolutionError := service.repositoryManager.ResolveDefaultBranch(executionContext, declaration.Path)
		if resolutionError != nil {
			return resolutionError
		}
		fmt.Fprintf(service.outputWriter, headsEntryTemplateConstant, declaration.Name, defaultBranch)
		return nil
	})
}

// checkoutTarget moves the repository to the declared branch or commit. A missing local branch
// is created tracking its origin counterpart first.
func (service *Service) checkoutTarget(executionContext context.Context, declaration externals.Declaration) error {
	branchName := service.effectiveBranch(declaration)
	if ensureError := service.ensureTrackingBranch(executionContext, declaration.Path, branchName); ensureError != nil {
		return ensureError
	}

	if !service.hasCommitTarget(declaration) {
		if checkoutError := service.repositoryManager.CheckoutReference(executionContext, declaration.Path, branchName); checkoutError != nil {
			return checkoutError
		}
		return service.repositoryManager.PullBranch(executionContext, declaration.Path)
	}

	if fetchError := service.repositoryManager.FetchRemote(executionContext, declaration.Path); fetchError != nil {
		return fetchError
	}
	return service.repositoryManager.CheckoutReference(executionContext, declaration.Path, declaration.Commit)
}

func (service *Service) ensureTrackingBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	branchExists, lookupError := service.repositoryManager.LocalBranchExists(executionContext, repositoryPath, branchName)
	if lookupError != nil {
		return lookupError
	}
	if branchExists {
		return nil
	}
	return service.repositoryManager.CreateTrackingBranch(executionContext, repositoryPath, branchName)
}

func (service *Service) effectiveBranch(declaration externals.Declaration) string {
	if len(declaration.Branch) > 0 {
		return declaration.Branch
	}
	return service.configuration.DefaultBranch
}

func (service *Service) hasCommitTarget(declaration externals.Declaration) bool {
	return len(declaration.Commit) > 0 && declaration.Commit != headReferenceMarkerConstant
}

func (service *Service) forEachDeclaration(declarations []externals.Declaration, operation func(externals.Declaration) error) error {
	failedCount := 0
	for _, declaration := range declarations {
		if operationError := operation(declaration); operationError != nil {
			fmt.Fprintf(service.errorWriter, entryFailureTemplateConstant, declaration.Name, operationError)
			failedCount++
		}
	}
	if failedCount > 0 {
		return EntryFailuresError{FailedCount: failedCount}
	}
	return nil
}
