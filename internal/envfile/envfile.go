// Package envfile resolves an application's identity from its environment
// files. The candidate files are tried as an explicit ordered chain: the
// first file that exists must carry the identity variable, and a missing
// variable there is a hard failure rather than a reason to fall through.
package envfile

import (
	"os"
	"path/filepath"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/extract"
	"github.com/trly/host-ops/internal/log"
)

// Environment file names tried in order.
const (
	PrimaryFileName   = ".env"
	SecondaryFileName = ".env.local"
)

// candidateFiles is the resolution chain. Order matters: the secondary file
// is only consulted when the primary file does not exist at all.
var candidateFiles = []string{PrimaryFileName, SecondaryFileName}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	// AppName is the value of the identity variable.
	AppName string
	// SourceFile is the candidate file name the value came from.
	SourceFile string
}

// Resolver locates the application identity variable in a directory.
type Resolver struct {
	varName string
	logger  log.Logger
}

// NewResolver creates a resolver for the given identity variable name.
func NewResolver(varName string, logger log.Logger) *Resolver {
	return &Resolver{
		varName: varName,
		logger:  logger,
	}
}

// Resolve walks the candidate chain in dir and returns the identity value.
// Error kinds are distinguished per file-system outcome: an absent candidate
// moves to the next one, an unreadable candidate is a permission failure,
// and a present candidate without the variable fails the whole resolution.
func (r *Resolver) Resolve(dir string) (Resolution, error) {
	for _, name := range candidateFiles {
		path := filepath.Join(dir, name)

		content, err := os.ReadFile(path) //nolint:gosec // Path is resolved from a validated unit file, not raw user input
		if err != nil {
			if os.IsNotExist(err) {
				r.logger.Debug("Environment file absent, trying next candidate", "path", path)
				continue
			}
			return Resolution{}, apperr.FromFS(err, "environment file is not accessible: "+path,
				apperr.CodeEnvFileNotFound, apperr.CodeEnvFileDenied)
		}

		value, ok := extract.DirectiveValue(string(content), r.varName)
		if !ok || value == "" {
			return Resolution{}, apperr.New(apperr.CodeAppNameNotFound,
				r.varName+" variable not found in "+path)
		}

		r.logger.Debug("Resolved application identity", "name", value, "source", name)
		return Resolution{AppName: value, SourceFile: name}, nil
	}

	return Resolution{}, apperr.New(apperr.CodeEnvFileNotFound,
		"no environment file found in "+dir)
}
