package gitrepo

import (
	"fmt"
	"path"
	"strings"
)

const (
	schemeSeparatorConstant             = "://"
	defaultRemoteSchemeConstant         = "ssh"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	relativePathPrefixConstant          = "."
	remoteURLParseErrorTemplateConstant = "%s: %s"
	emptyRemoteURLMessageConstant       = "remote url is empty"
	missingPathMessageConstant          = "remote url carries no path component"
)

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ResolveRemoteURL normalizes a declared external URL against the host repository's origin URL.
// Absolute URLs pass through untouched. URLs starting with "." resolve relative to the origin
// URL's path component; origins without an explicit scheme default to ssh.
func ResolveRemoteURL(originURL string, declaredURL string) (string, error) {
	trimmedDeclaredURL := strings.TrimSpace(declaredURL)
	if !strings.HasPrefix(trimmedDeclaredURL, relativePathPrefixConstant) {
		return trimmedDeclaredURL, nil
	}

	scheme, hostPart, originPath, parseError := splitOriginURL(originURL)
	if parseError != nil {
		return "", parseError
	}

	resolvedPath := path.Join(path.Dir(originPath), trimmedDeclaredURL)
	return scheme + schemeSeparatorConstant + hostPart + pathSeparatorConstant + resolvedPath, nil
}

func splitOriginURL(originURL string) (string, string, string, error) {
	trimmedOriginURL := strings.TrimSpace(originURL)
	if len(trimmedOriginURL) == 0 {
		return "", "", "", RemoteURLParseError{Input: originURL, Message: emptyRemoteURLMessageConstant}
	}

	if schemeIndex := strings.Index(trimmedOriginURL, schemeSeparatorConstant); schemeIndex >= 0 {
		scheme := trimmedOriginURL[:schemeIndex]
		remainder := trimmedOriginURL[schemeIndex+len(schemeSeparatorConstant):]
		hostSplitIndex := strings.Index(remainder, pathSeparatorConstant)
		if hostSplitIndex < 0 {
			return "", "", "", RemoteURLParseError{Input: originURL, Message: missingPathMessageConstant}
		}
		return scheme, remainder[:hostSplitIndex], remainder[hostSplitIndex+1:], nil
	}

	pathSplitIndex := strings.Index(trimmedOriginURL, scpPathDelimiterConstant)
	if pathSplitIndex < 0 {
		return "", "", "", RemoteURLParseError{Input: originURL, Message: missingPathMessageConstant}
	}

	return defaultRemoteSchemeConstant, trimmedOriginURL[:pathSplitIndex], trimmedOriginURL[pathSplitIndex+1:], nil
}
