package status

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/externals/internal/externals"
	"github.com/temirov/externals/internal/gitrepo"
)

const (
	okEntryTemplateConstant            = "ok            %s%s\n"
	brokenEntryTemplateConstant        = "BROKEN        %s: %s\n"
	uninitializedEntryTemplateConstant = "uninitialized %s\n"
	brokenDetailTemplateConstant       = "%s (actual %s, expected %s)"
	dirtyAnnotationConstant            = " [dirty]"
	untrackedAnnotationConstant        = " [untracked]"
	divergenceAnnotationTemplate       = " (behind %d, ahead %d)"
	summaryTemplateConstant            = "ok %d, broken %d, uninitialized %d\n"
	parseWarningTemplateConstant       = "warning: %s\n"
	unhealthyTemplateConstant          = "%d broken external(s)"
)

// UnhealthyExternalsError reports a status run that found broken externals.
type UnhealthyExternalsError struct {
	BrokenCount int
}

// Error describes the unhealthy run.
func (unhealthyError UnhealthyExternalsError) Error() string {
	return fmt.Sprintf(unhealthyTemplateConstant, unhealthyError.BrokenCount)
}

// RepositoryProbe exposes the read-only repository queries used during reconciliation.
type RepositoryProbe interface {
	IsWorktreeDirty(executionContext context.Context, repositoryPath string) (bool, error)
	HasUntrackedFiles(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetCurrentRevision(executionContext context.Context, repositoryPath string) (string, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string) (string, error)
	CountUpstreamDivergence(executionContext context.Context, repositoryPath string, branchName string) (gitrepo.UpstreamDivergence, error)
}

// Service reconciles declared externals against probed repository state and renders a report.
type Service struct {
	probe        RepositoryProbe
	fileSystem   gitrepo.FileSystem
	originURL    string
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a status Service. The origin URL of the host repository is used to
// normalize relative declared URLs before comparison and may be empty when unavailable.
func NewService(probe RepositoryProbe, fileSystem gitrepo.FileSystem, originURL string, outputWriter io.Writer, errorWriter io.Writer) *Service {
	return &Service{
		probe:        probe,
		fileSystem:   fileSystem,
		originURL:    originURL,
		outputWriter: outputWriter,
		errorWriter:  errorWriter,
	}
}

// Run probes every declaration in configuration order, prints one line per entry plus an
// aggregate summary, and returns UnhealthyExternalsError when broken externals were found.
// Parse warnings and per-entry probe failures are reported without aborting the run.
func (service *Service) Run(executionContext context.Context, declarations []externals.Declaration, parseWarnings []externals.ParseWarning) error {
	for _, parseWarning := range parseWarnings {
		fmt.Fprintf(service.errorWriter, parseWarningTemplateConstant, parseWarning.String())
	}

	summary := Summary{}
	for _, declaration := range declarations {
		classification := service.classifyDeclaration(executionContext, declaration)
		summary.Record(classification)
		service.renderEntry(declaration, classification)
	}

	fmt.Fprintf(service.outputWriter, summaryTemplateConstant, summary.OkCount, summary.BrokenCount, summary.UninitializedCount)

	if !summary.Healthy() {
		return UnhealthyExternalsError{BrokenCount: summary.BrokenCount}
	}
	return nil
}

func (service *Service) classifyDeclaration(executionContext context.Context, declaration externals.Declaration) Classification {
	if declaration.IsAmbiguous() {
		return Classify(declaration, ProbedState{})
	}

	repositoryExists, existenceError := gitrepo.RepositoryExists(service.fileSystem, declaration.Path)
	if existenceError != nil {
		return Classification{State: StateBroken, Reason: existenceError.Error()}
	}
	if !repositoryExists {
		return Classify(declaration, ProbedState{})
	}

	remoteURL, remoteError := service.probe.GetRemoteURL(executionContext, declaration.Path)
	if remoteError != nil {
		return Classification{State: StateBroken, Reason: remoteError.Error()}
	}
	if remoteURL != service.expectedRemoteURL(declaration) {
		return Classify(declaration, ProbedState{Exists: true, RemoteURL: remoteURL})
	}

	probedState := ProbedState{Exists: true, RemoteURL: remoteURL}
	var probeError error
	probedState.CurrentBranch, probeError = service.probe.GetCurrentBranch(executionContext, declaration.Path)
	if probeError != nil {
		return Classification{State: StateBroken, Reason: probeError.Error()}
	}
	probedState.CurrentRevision, probeError = service.probe.GetCurrentRevision(executionContext, declaration.Path)
	if probeError != nil {
		return Classification{State: StateBroken, Reason: probeError.Error()}
	}
	probedState.IsDirty, probeError = service.probe.IsWorktreeDirty(executionContext, declaration.Path)
	if probeError != nil {
		return Classification{State: StateBroken, Reason: probeError.Error()}
	}
	probedState.HasUntracked, probeError = service.probe.HasUntrackedFiles(executionContext, declaration.Path)
	if probeError != nil {
		return Classification{State: StateBroken, Reason: probeError.Error()}
	}

	if probedState.CurrentBranch != gitrepo.DetachedBranchName {
		probedState.Divergence, probeError = service.probe.CountUpstreamDivergence(executionContext, declaration.Path, probedState.CurrentBranch)
		if probeError != nil {
			return Classification{State: StateBroken, Reason: probeError.Error()}
		}
	}

	return Classify(declaration, probedState)
}

// expectedRemoteURL resolves relative declared URLs against the host origin so that the
// comparison matches what a clone would have configured. Unresolvable URLs fall back to
// the declared text.
func (service *Service) expectedRemoteURL(declaration externals.Declaration) string {
	resolvedURL, resolutionError := gitrepo.ResolveRemoteURL(service.originURL, declaration.URL)
	if resolutionError != nil {
		return strings.TrimSpace(declaration.URL)
	}
	return resolvedURL
}

func (service *Service) renderEntry(declaration externals.Declaration, classification Classification) {
	switch classification.State {
	case StateUninitialized:
		fmt.Fprintf(service.outputWriter, uninitializedEntryTemplateConstant, declaration.Name)
	case StateBroken:
		fmt.Fprintf(service.outputWriter, brokenEntryTemplateConstant, declaration.Name, formatBrokenDetail(classification))
	case StateOk:
		fmt.Fprintf(service.outputWriter, okEntryTemplateConstant, declaration.Name, formatOkAnnotations(classification))
	}
}

func formatBrokenDetail(classification Classification) string {
	if len(classification.Actual) == 0 && len(classification.Expected) == 0 {
		return classification.Reason
	}
	return fmt.Sprintf(brokenDetailTemplateConstant, classification.Reason, classification.Actual, classification.Expected)
}

func formatOkAnnotations(classification Classification) string {
	annotations := strings.Builder{}
	if classification.IsDirty {
		annotations.WriteString(dirtyAnnotationConstant)
	}
	if classification.HasUntracked {
		annotations.WriteString(untrackedAnnotationConstant)
	}
	divergence := classification.Divergence
	if divergence.Known && (divergence.Behind > 0 || divergence.Ahead > 0) {
		annotations.WriteString(fmt.Sprintf(divergenceAnnotationTemplate, divergence.Behind, divergence.Ahead))
	}
	return annotations.String()
}
