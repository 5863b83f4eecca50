/*
Package lock implements inter-process mutual exclusion over a shared
directory.

A lock on a resource (a chunk file or directory) is a marker file located next
to it, named like the resource with the extension replaced:

	<dir>/ab.yml   resource
	<dir>/ab.lock  marker

Acquiring means creating the marker with O_EXCL, releasing means removing it.
There is no in-memory mutex: two goroutines of one process are serialized the
same way two processes are.

Guard.Release never reports errors. A marker that failed to be removed makes
subsequent Acquire calls wait out the timeout and fail with ErrTimeout until
Locker.Clean removes it, data is never corrupted.
*/
package lock
