// Package unstable implements the subset of the "wasi_unstable" host
// interface that the watim compiler and the programs it emits rely on.
//
// The host keeps no file system of its own. Each run gets a Session that owns
// a descriptor table over a virtual tree whose content was loaded before the
// guest started, so every host call completes synchronously:
//
//	fd 0  stdin, unsupported
//	fd 1  stdout, forwarded to the output sink
//	fd 2  stderr, forwarded to the output sink
//	fd 3  the preopened root directory
//	fd 4+ read-only files opened with path_open, never reused
//
// The Session travels in the context.Context of the guest call, which lets a
// single host module instance serve any number of concurrent runs:
//
//	mod, _ := unstable.Instantiate(ctx, r, unstable.ModuleName)
//	s := unstable.NewSession(unstable.Config{Args: args, Root: root, Sink: sink})
//	_, err := start.Call(unstable.WithSession(ctx, s))
//
// Guest memory is taken from the calling module on every call and never
// cached. Calls on descriptors that were never opened are protocol
// violations: fd_read and fd_write abort the run instead of returning an
// errno. proc_exit unwinds the guest with a *sys.ExitError, which the caller
// recognizes at the call boundary.
package unstable
