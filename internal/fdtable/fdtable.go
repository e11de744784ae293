// Package fdtable implements the dump_fd_table diagnostic: given an upper
// bound on fd values, it classifies every fd as closed, a non-socket (with
// its /proc/self/fd readlink target), or a socket (with local and, if
// connected, peer address formatted for IPv4, IPv6, or UNIX).
//
// It is the Go translation of snprint_fd_table from the original C source.
// The printer is pure with respect to the watcher package: it is invoked
// only from the DumpFDTable action and never touches the Watch Registry.
package fdtable

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Fprint writes a human-readable description of fds [0, maxFD) to w.
func Fprint(w io.Writer, maxFD int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "File descriptors {"); err != nil {
		return err
	}

	for i := 0; i < maxFD; {
		var st unix.Stat_t
		if err := unix.Fstat(i, &st); err != nil {
			j := i + 1
			for j < maxFD {
				var st2 unix.Stat_t
				if e := unix.Fstat(j, &st2); e == nil {
					break
				}
				j++
			}
			if j-i >= 2 {
				fmt.Fprintf(bw, "%4d-%d: (closed)\n", i, j-1)
			} else {
				fmt.Fprintf(bw, "%4d: (closed)\n", i)
			}
			i = j
			continue
		}

		if st.Mode&unix.S_IFMT != unix.S_IFSOCK {
			writeNonSocket(bw, i)
			i++
			continue
		}

		writeSocket(bw, i)
		i++
	}

	if _, err := fmt.Fprintln(bw, "}"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNonSocket(bw *bufio.Writer, fd int) {
	target, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil || target == "" {
		fmt.Fprintf(bw, "%4d: (not a socket, no proc/fd?)\n", fd)
		return
	}
	fmt.Fprintf(bw, "%4d: %s\n", fd, target)
}

func writeSocket(bw *bufio.Writer, fd int) {
	local, err := unix.Getsockname(fd)
	if err != nil {
		fmt.Fprintf(bw, "%4d: (getsockname failed)", fd)
	} else {
		fmt.Fprintf(bw, "%4d: %s", fd, formatSockaddr(local))
	}

	if peer, err := unix.Getpeername(fd); err == nil {
		fmt.Fprintf(bw, " -> %s\n", formatSockaddr(peer))
	} else {
		fmt.Fprintln(bw)
	}
}

// formatSockaddr renders a sockaddr the way snprint_sockaddr does in the
// original: "inet host:port", "inet6 [host]:port", or "unix path", with
// non-printable bytes in UNIX socket names (common for Linux's abstract
// namespace, which is arbitrary binary, not text) replaced with '?'.
func formatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("inet %d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("inet6 [%s]:%d", formatIPv6(a.Addr), a.Port)
	case *unix.SockaddrUnix:
		return fmt.Sprintf("unix %s", sanitize(a.Name))
	default:
		return fmt.Sprintf("? socket family unknown (%T)", sa)
	}
}

func formatIPv6(addr [16]byte) string {
	buf := make([]byte, 0, 40)
	for i := 0; i < 16; i += 2 {
		if i != 0 {
			buf = append(buf, ':')
		}
		buf = appendHex16(buf, uint16(addr[i])<<8|uint16(addr[i+1]))
	}
	return string(buf)
}

func appendHex16(buf []byte, v uint16) []byte {
	return fmt.Appendf(buf, "%x", v)
}

// sanitize replaces non-printable ASCII bytes with '?', matching the
// original's handling of abstract UNIX socket names.
func sanitize(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c < 0x20 || c >= 0x7F {
			b[i] = '?'
		}
	}
	return string(b)
}
