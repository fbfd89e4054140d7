package execshell

// CommandEventObserver receives lifecycle notifications for every git or shell
// subprocess the executor runs. The ui package implements it to narrate
// command activity when console logging is active.
type CommandEventObserver interface {
	// CommandStarted fires before the subprocess is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the subprocess exits, including non-zero exits.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the subprocess could not run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver keeps executors without an observer silent.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
