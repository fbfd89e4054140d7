package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitFetchSubcommandNameConstant    = "fetch"
	gitPullSubcommandNameConstant     = "pull"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitResetSubcommandNameConstant    = "reset"
	gitStatusSubcommandNameConstant   = "status"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitRemoteSubcommandNameConstant   = "remote"
	gitLSRemoteSubcommandNameConstant = "ls-remote"
	gitBranchSubcommandNameConstant   = "branch"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitShowTopLevelFlagConstant       = "--show-toplevel"
	gitSymrefFlagConstant             = "--symref"
)

const (
	gitCloneStartTemplateConstant       = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant     = "Cloned %s into %s"
	gitCloneFailureTemplateConstant     = "Failed to clone %s into %s (exit code %d%s)"
	gitFetchStartTemplateConstant       = "Fetching remote updates in %s"
	gitFetchSuccessTemplateConstant     = "Fetched remote updates in %s"
	gitFetchFailureTemplateConstant     = "Failed to fetch remote updates in %s (exit code %d%s)"
	gitPullStartTemplateConstant        = "Pulling upstream changes in %s"
	gitPullSuccessTemplateConstant      = "Pulled upstream changes in %s"
	gitPullFailureTemplateConstant      = "Failed to pull upstream changes in %s (exit code %d%s)"
	gitCheckoutStartTemplateConstant    = "Switching %s to %s"
	gitCheckoutSuccessTemplateConstant  = "%s now at %s"
	gitCheckoutFailureTemplateConstant  = "Failed to switch %s to %s (exit code %d%s)"
	gitResetStartTemplateConstant       = "Resetting %s to %s"
	gitResetSuccessTemplateConstant     = "Reset %s to %s"
	gitResetFailureTemplateConstant     = "Failed to reset %s to %s (exit code %d%s)"
	gitStatusStartTemplateConstant      = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant    = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant    = "Failed to review working tree status in %s (exit code %d%s)"
	gitBranchStartTemplateConstant      = "Preparing branch %s in %s"
	gitBranchSuccessTemplateConstant    = "Prepared branch %s in %s"
	gitBranchFailureTemplateConstant    = "Failed to prepare branch %s in %s (exit code %d%s)"
	gitTopLevelStartTemplateConstant    = "Resolving repository top level from %s"
	gitTopLevelSuccessTemplateConstant  = "Repository top level resolved from %s"
	gitTopLevelFailureTemplateConstant  = "Failed to resolve repository top level from %s (exit code %d%s)"
	gitBranchNameStartTemplateConstant  = "Identifying current branch in %s"
	gitBranchNameSuccessConstant        = "Current branch in %s is %s"
	gitBranchNameDetachedConstant       = "%s is in a detached HEAD state"
	gitBranchNameFailureConstant        = "Failed to identify current branch in %s (exit code %d%s)"
	gitRevisionStartTemplateConstant    = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant  = "%s in %s resolved to %s"
	gitRevisionFailureTemplateConstant  = "Failed to resolve %s in %s (exit code %d%s)"
	gitDivergenceStartTemplateConstant  = "Counting upstream divergence in %s"
	gitDivergenceSuccessConstant        = "Counted upstream divergence in %s"
	gitDivergenceFailureConstant        = "Failed to count upstream divergence in %s (exit code %d%s)"
	gitRemoteStartTemplateConstant      = "Checking remote URL in %s"
	gitRemoteSuccessTemplateConstant    = "Remote URL in %s is %s"
	gitRemoteFailureTemplateConstant    = "Failed to check remote URL in %s (exit code %d%s)"
	gitDefaultHeadStartTemplateConstant = "Checking remote default branch for %s"
	gitDefaultHeadSuccessConstant       = "Checked remote default branch for %s"
	gitDefaultHeadFailureConstant       = "Failed to check remote default branch for %s (exit code %d%s)"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeClone(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeInDirectory(command, result, failure, stage, gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant, gitFetchFailureTemplateConstant)
	case gitPullSubcommandNameConstant:
		return formatter.describeInDirectory(command, result, failure, stage, gitPullStartTemplateConstant, gitPullSuccessTemplateConstant, gitPullFailureTemplateConstant)
	case gitStatusSubcommandNameConstant:
		return formatter.describeInDirectory(command, result, failure, stage, gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeTargeted(command, result, failure, stage, gitCheckoutStartTemplateConstant, gitCheckoutSuccessTemplateConstant, gitCheckoutFailureTemplateConstant)
	case gitResetSubcommandNameConstant:
		return formatter.describeTargeted(command, result, failure, stage, gitResetStartTemplateConstant, gitResetSuccessTemplateConstant, gitResetFailureTemplateConstant)
	case gitBranchSubcommandNameConstant:
		return formatter.describeBranch(command, result, failure, stage)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeRevParse(command, result, failure, stage)
	case gitRevListSubcommandNameConstant:
		return formatter.describeCounted(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeRemoteLookup(command, result, failure, stage)
	case gitLSRemoteSubcommandNameConstant:
		return formatter.describeDefaultHead(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeClone(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	remoteURL := fallbackUnknownValueLabelConstant
	destination := fallbackUnknownValueLabelConstant
	positional := nonFlagArguments(arguments[1:])
	if len(positional) > 0 {
		remoteURL = positional[0]
	}
	if len(positional) > 1 {
		destination = positional[1]
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, remoteURL, destination)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, remoteURL, destination)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, remoteURL, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeInDirectory(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeTargeted(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	target := fallbackUnknownValueLabelConstant
	positional := nonFlagArguments(command.Details.Arguments[1:])
	if len(positional) > 0 {
		target = positional[len(positional)-1]
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory, target)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory, target)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, target, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeBranch(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	branchName := fallbackUnknownValueLabelConstant
	positional := nonFlagArguments(command.Details.Arguments[1:])
	if len(positional) > 0 {
		branchName = positional[0]
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitBranchStartTemplateConstant, branchName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitBranchSuccessTemplateConstant, branchName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitBranchFailureTemplateConstant, branchName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeRevParse(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitShowTopLevelFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitTopLevelStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitTopLevelSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitTopLevelFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		}
	}

	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitBranchNameStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			trimmed := strings.TrimSpace(result.StandardOutput)
			if strings.EqualFold(trimmed, "HEAD") || len(trimmed) == 0 {
				return fmt.Sprintf(gitBranchNameDetachedConstant, workingDirectory)
			}
			return fmt.Sprintf(gitBranchNameSuccessConstant, workingDirectory, trimmed)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchNameFailureConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		}
	}

	reference := fallbackUnknownValueLabelConstant
	if len(arguments) > 1 {
		reference = strings.TrimSpace(arguments[len(arguments)-1])
	}
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, strings.TrimSpace(result.StandardOutput))
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeCounted(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitDivergenceStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitDivergenceSuccessConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitDivergenceFailureConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeRemoteLookup(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRemoteStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRemoteSuccessTemplateConstant, workingDirectory, strings.TrimSpace(result.StandardOutput))
	case messageStageFailure:
		return fmt.Sprintf(gitRemoteFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDefaultHead(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitSymrefFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitDefaultHeadStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitDefaultHeadSuccessConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitDefaultHeadFailureConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func nonFlagArguments(arguments []string) []string {
	filtered := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	return filtered
}
