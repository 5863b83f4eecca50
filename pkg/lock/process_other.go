//go:build !unix

package lock

func processAlive(int) bool {
	return true
}
