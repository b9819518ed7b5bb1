package repo

import "errors"

// Outcomes that leave nothing to do. The command line reports them and exits
// cleanly.
var (
	ErrNothingStaged   = errors.New("no files staged")
	ErrNothingToCommit = errors.New("nothing to commit, up-to-date")
	ErrNothingToAdd    = errors.New("no files to add")
	ErrCurrentBranch   = errors.New("cannot delete the current branch")
)

// ErrPending reports that the staged tree differs from the branch tip, so
// some code is still undocumented or untested.
var ErrPending = errors.New("there is undocumented or untested code")
