package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/externals/internal/execshell"
	"github.com/temirov/externals/internal/ui"
)

func TestConsoleCommandEventLoggerLevels(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"fetch"}, WorkingDirectory: "/workspace/repo"},
	}

	testCases := []struct {
		name          string
		emit          func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel zap.AtomicLevel
	}{
		{
			name: "started_logs_info",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(command)
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.InfoLevel),
		},
		{
			name: "completed_zero_exit_logs_info",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.InfoLevel),
		},
		{
			name: "completed_nonzero_exit_logs_warn",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal"})
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.WarnLevel),
		},
		{
			name: "execution_failure_logs_error",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(command, errors.New("binary missing"))
			},
			expectedLevel: zap.NewAtomicLevelAt(zap.ErrorLevel),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.emit(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel.Level(), entries[0].Level)
		})
	}
}
