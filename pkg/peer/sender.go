package peer

import (
	"bufio"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/nilsio/trackerd/internal/logger"
)

// Sender handles a single accepted peer connection: it reads one request
// line, opens the named file relative to baseDir, and streams it back (or
// reports a miss with the 404 sentinel).
type Sender struct {
	baseDir string
}

// NewSender constructs a Sender rooted at baseDir.
func NewSender(baseDir string) *Sender {
	return &Sender{baseDir: baseDir}
}

// Handle serves exactly one request on conn, then closes it.
func (s *Sender) Handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	target, err := readRequestLine(reader)
	if err != nil {
		logger.Debug("peer sender: failed to read request line", logger.Err(err))
		return
	}

	path := s.resolve(target)
	file, err := os.Open(path)
	if err != nil {
		if _, writeErr := io.WriteString(conn, notFoundSentinel); writeErr != nil {
			logger.Debug("peer sender: failed to write 404 sentinel", logger.Err(writeErr))
		}
		return
	}
	defer file.Close()

	buf := make([]byte, chunkSize)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			if _, writeErr := conn.Write(buf[:n]); writeErr != nil {
				logger.Debug("peer sender: write error mid-stream", logger.Err(writeErr))
				return
			}
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			logger.Debug("peer sender: read error mid-stream", logger.Err(readErr))
			return
		}
	}
}

// resolve turns a peer-supplied target into a filesystem path. Targets are
// the sender's own absolute paths chosen by the registering owner; baseDir
// is joined only when target is not already absolute, keeping single-file
// senders usable without a serving root.
func (s *Sender) resolve(target string) string {
	if filepath.IsAbs(target) || s.baseDir == "" {
		return target
	}
	return filepath.Join(s.baseDir, target)
}
