//go:build !(cgo && (linux || darwin || freebsd)) && !(!cgo && (linux || darwin || freebsd || windows) && (amd64 || arm64))

package native

func openRoutine(Config) (Routine, error) {
	return nil, ErrUnavailable
}
