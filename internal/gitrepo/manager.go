package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/externals/internal/execshell"
)

const (
	originRemoteNameConstant             = "origin"
	gitStatusSubcommandConstant          = "status"
	gitPorcelainFlagConstant             = "--porcelain"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitAbbrevRefFlagConstant             = "--abbrev-ref"
	gitVerifyFlagConstant                = "--verify"
	gitQuietFlagConstant                 = "--quiet"
	gitShowTopLevelFlagConstant          = "--show-toplevel"
	gitHeadReferenceConstant             = "HEAD"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitRevListSubcommandConstant         = "rev-list"
	gitLeftRightFlagConstant             = "--left-right"
	gitCountFlagConstant                 = "--count"
	gitLSRemoteSubcommandConstant        = "ls-remote"
	gitSymrefFlagConstant                = "--symref"
	gitCloneSubcommandConstant           = "clone"
	gitFetchSubcommandConstant           = "fetch"
	gitPullSubcommandConstant            = "pull"
	gitCheckoutSubcommandConstant        = "checkout"
	gitBranchSubcommandConstant          = "branch"
	gitTrackFlagConstant                 = "--track"
	gitResetSubcommandConstant           = "reset"
	gitHardFlagConstant                  = "--hard"
	untrackedStatusPrefixConstant        = "??"
	localBranchReferencePrefixConstant   = "refs/heads/"
	symbolicReferenceLinePrefixConstant  = "ref:"
	upstreamReferenceSuffixConstant      = "@{upstream}"
	symmetricDifferenceSeparatorConstant = "..."
	divergenceFieldCountConstant         = 2

	executorNotConfiguredMessageConstant      = "git executor not configured"
	defaultBranchUnresolvedTemplateConstant   = "unable to determine remote default branch for %s"
	divergenceOutputMalformedTemplateConstant = "unexpected rev-list output: %q"
	remoteTrackingReferenceTemplateConstant   = "%s/%s"
	detachedBranchMarkerConstant              = "DETACHED"
)

// DetachedBranchName marks a repository checked out to a commit rather than a named branch.
const DetachedBranchName = detachedBranchMarkerConstant

// ErrExecutorNotConfigured reports a RepositoryManager constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// DefaultBranchResolutionError reports a remote whose symbolic default branch could not be determined.
type DefaultBranchResolutionError struct {
	RepositoryPath string
}

// Error describes the resolution failure.
func (resolutionError DefaultBranchResolutionError) Error() string {
	return fmt.Sprintf(defaultBranchUnresolvedTemplateConstant, resolutionError.RepositoryPath)
}

// UpstreamDivergence carries ahead/behind commit counts relative to the upstream branch.
// Known is false when no upstream tracking data is available; counts must then be ignored.
type UpstreamDivergence struct {
	Behind int
	Ahead  int
	Known  bool
}

// RepositoryManager performs git operations against on-disk repositories through a GitExecutor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// IsWorktreeDirty reports whether tracked files carry uncommitted modifications.
func (manager *RepositoryManager) IsWorktreeDirty(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusError := manager.runGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return false, statusError
	}
	for _, statusLine := range splitOutputLines(statusOutput) {
		if !strings.HasPrefix(statusLine, untrackedStatusPrefixConstant) {
			return true, nil
		}
	}
	return false, nil
}

// HasUntrackedFiles reports whether files exist that are neither tracked nor ignored.
func (manager *RepositoryManager) HasUntrackedFiles(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusError := manager.runGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return false, statusError
	}
	for _, statusLine := range splitOutputLines(statusOutput) {
		if strings.HasPrefix(statusLine, untrackedStatusPrefixConstant) {
			return true, nil
		}
	}
	return false, nil
}

// GetCurrentBranch returns the checked-out branch name or DetachedBranchName for detached checkouts.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	branchOutput, branchError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if branchError != nil {
		return "", branchError
	}
	branchName := strings.TrimSpace(branchOutput)
	if branchName == gitHeadReferenceConstant {
		return DetachedBranchName, nil
	}
	return branchName, nil
}

// GetCurrentRevision returns the full revision hash of HEAD.
func (manager *RepositoryManager) GetCurrentRevision(executionContext context.Context, repositoryPath string) (string, error) {
	revisionOutput, revisionError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if revisionError != nil {
		return "", revisionError
	}
	return strings.TrimSpace(revisionOutput), nil
}

// GetRemoteURL returns the configured URL of the origin remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string) (string, error) {
	remoteOutput, remoteError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, originRemoteNameConstant)
	if remoteError != nil {
		return "", remoteError
	}
	return strings.TrimSpace(remoteOutput), nil
}

// CountUpstreamDivergence reports how far the local branch diverged from its upstream counterpart.
// Missing upstream tracking data yields an unknown divergence, not an error.
func (manager *RepositoryManager) CountUpstreamDivergence(executionContext context.Context, repositoryPath string, branchName string) (UpstreamDivergence, error) {
	symmetricRange := branchName + upstreamReferenceSuffixConstant + symmetricDifferenceSeparatorConstant + branchName
	divergenceOutput, divergenceError := manager.runGit(executionContext, repositoryPath, gitRevListSubcommandConstant, gitLeftRightFlagConstant, gitCountFlagConstant, symmetricRange)
	if divergenceError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(divergenceError, &commandFailure) {
			return UpstreamDivergence{}, nil
		}
		return UpstreamDivergence{}, divergenceError
	}

	divergenceFields := strings.Fields(strings.TrimSpace(divergenceOutput))
	if len(divergenceFields) != divergenceFieldCountConstant {
		return UpstreamDivergence{}, fmt.Errorf(divergenceOutputMalformedTemplateConstant, divergenceOutput)
	}

	behindCount, behindParseError := strconv.Atoi(divergenceFields[0])
	if behindParseError != nil {
		return UpstreamDivergence{}, fmt.Errorf(divergenceOutputMalformedTemplateConstant, divergenceOutput)
	}
	aheadCount, aheadParseError := strconv.Atoi(divergenceFields[1])
	if aheadParseError != nil {
		return UpstreamDivergence{}, fmt.Errorf(divergenceOutputMalformedTemplateConstant, divergenceOutput)
	}

	return UpstreamDivergence{Behind: behindCount, Ahead: aheadCount, Known: true}, nil
}

// ResolveDefaultBranch determines the remote's symbolic default branch name.
func (manager *RepositoryManager) ResolveDefaultBranch(executionContext context.Context, repositoryPath string) (string, error) {
	symrefOutput, symrefError := manager.runGit(executionContext, repositoryPath, gitLSRemoteSubcommandConstant, gitSymrefFlagConstant, originRemoteNameConstant, gitHeadReferenceConstant)
	if symrefError != nil {
		return "", DefaultBranchResolutionError{RepositoryPath: repositoryPath}
	}

	for _, symrefLine := range splitOutputLines(symrefOutput) {
		if !strings.HasPrefix(symrefLine, symbolicReferenceLinePrefixConstant) {
			continue
		}
		referenceFields := strings.Fields(symrefLine)
		if len(referenceFields) < 2 {
			continue
		}
		if !strings.HasPrefix(referenceFields[1], localBranchReferencePrefixConstant) {
			continue
		}
		return strings.TrimPrefix(referenceFields[1], localBranchReferencePrefixConstant), nil
	}

	return "", DefaultBranchResolutionError{RepositoryPath: repositoryPath}
}

// GetTopLevelDirectory resolves the repository top level from the provided working directory.
func (manager *RepositoryManager) GetTopLevelDirectory(executionContext context.Context, workingDirectory string) (string, error) {
	topLevelOutput, topLevelError := manager.runGit(executionContext, workingDirectory, gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant)
	if topLevelError != nil {
		return "", topLevelError
	}
	return strings.TrimSpace(topLevelOutput), nil
}

// LocalBranchExists reports whether a local branch with the given name exists.
func (manager *RepositoryManager) LocalBranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	_, verifyError := manager.runGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, localBranchReferencePrefixConstant+branchName)
	if verifyError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(verifyError, &commandFailure) {
			return false, nil
		}
		return false, verifyError
	}
	return true, nil
}

// CloneRepository clones the remote URL into the destination path.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error {
	_, cloneError := manager.runGit(executionContext, "", gitCloneSubcommandConstant, remoteURL, destinationPath)
	return cloneError
}

// FetchRemote updates remote tracking state for the repository.
func (manager *RepositoryManager) FetchRemote(executionContext context.Context, repositoryPath string) error {
	_, fetchError := manager.runGit(executionContext, repositoryPath, gitFetchSubcommandConstant)
	return fetchError
}

// PullBranch integrates upstream changes into the checked-out branch.
func (manager *RepositoryManager) PullBranch(executionContext context.Context, repositoryPath string) error {
	_, pullError := manager.runGit(executionContext, repositoryPath, gitPullSubcommandConstant)
	return pullError
}

// CheckoutReference switches the repository to the provided branch or revision.
func (manager *RepositoryManager) CheckoutReference(executionContext context.Context, repositoryPath string, reference string) error {
	_, checkoutError := manager.runGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, reference)
	return checkoutError
}

// CreateTrackingBranch creates a local branch tracking the matching origin branch.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	remoteReference := fmt.Sprintf(remoteTrackingReferenceTemplateConstant, originRemoteNameConstant, branchName)
	_, branchError := manager.runGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitTrackFlagConstant, branchName, remoteReference)
	return branchError
}

// HardReset discards local history and state in favor of the provided reference.
func (manager *RepositoryManager) HardReset(executionContext context.Context, repositoryPath string, reference string) error {
	_, resetError := manager.runGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitHardFlagConstant, reference)
	return resetError
}

// RemoteTrackingReference formats the origin-qualified reference for a branch name.
func RemoteTrackingReference(branchName string) string {
	return fmt.Sprintf(remoteTrackingReferenceTemplateConstant, originRemoteNameConstant, branchName)
}

func splitOutputLines(output string) []string {
	rawLines := strings.Split(output, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, rawLine := range rawLines {
		if len(strings.TrimSpace(rawLine)) == 0 {
			continue
		}
		lines = append(lines, rawLine)
	}
	return lines
}
