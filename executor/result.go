package executor

// CommandResult carries everything a finished command reports: the two
// output streams, complete and unmodified, and the process exit status.
type CommandResult struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Success reports whether the command exited with status zero.
func (r *CommandResult) Success() bool {
	return r.ExitStatus == 0
}
