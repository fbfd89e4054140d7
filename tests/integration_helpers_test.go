package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

const integrationCommandTimeout = 30 * time.Second

func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		testInstance.Fatalf("unable to determine working directory: %v", workingDirectoryError)
	}
	return filepath.Dir(currentWorkingDirectory)
}

func buildExternalsBinary(testInstance *testing.T) string {
	testInstance.Helper()
	binaryPath := filepath.Join(testInstance.TempDir(), "externals")

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", "build", "-o", binaryPath, ".")
	command.Dir = repositoryRootDirectory(testInstance)
	command.Env = os.Environ()

	outputBytes, buildError := command.CombinedOutput()
	if buildError != nil {
		testInstance.Fatalf("binary build failed: %v\n%s", buildError, string(outputBytes))
	}
	return binaryPath
}

func runBinary(testInstance *testing.T, binaryPath string, workingDirectory string, arguments ...string) (string, error) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = os.Environ()

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "git", arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=integration",
		"GIT_AUTHOR_EMAIL=integration@example.com",
		"GIT_COMMITTER_NAME=integration",
		"GIT_COMMITTER_EMAIL=integration@example.com",
	)

	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %v failed: %v\n%s", arguments, runError, string(outputBytes))
	}
}

func initializeGitRepository(testInstance *testing.T, repositoryDirectory string) {
	testInstance.Helper()
	runGit(testInstance, repositoryDirectory, "init")
	runGit(testInstance, repositoryDirectory, "commit", "--allow-empty", "-m", "initial")
}

func requireGitAvailable(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}
