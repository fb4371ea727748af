package peer

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/nilsio/trackerd/internal/logger"
)

// ErrPeerNotFound is surfaced when the remote peer responds with the 404
// sentinel instead of file content.
var ErrPeerNotFound = fmt.Errorf("PEER_404")

// ProgressFunc receives the percent complete (0-100) as bytes arrive.
// expectedSize of 0 disables percent computation; the ProgressFunc is then
// never called.
type ProgressFunc func(percent int)

// Download connects to (ip, port), requests remotePath, and writes the
// response into a local file chosen by nextAvailableName under destDir,
// reporting progress against expectedSize. On any I/O error or a 404
// response, the partial local file is deleted before returning.
func Download(ip string, port int, remotePath, fileName, fileType string, expectedSize int64, destDir string, progress ProgressFunc) (string, error) {
	addr := fmt.Sprintf("%s:%d", ip, port)
	conn, err := net.DialTimeout("tcp", addr, recvTimeoutSeconds*time.Second)
	if err != nil {
		return "", fmt.Errorf("connect to peer %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(recvTimeoutSeconds * time.Second)); err != nil {
		logger.Debug("peer downloader: failed to set deadline", logger.Err(err))
	}

	target := remotePath
	if target == "" {
		target = fileName + "." + fileType
	}
	if _, err := io.WriteString(conn, buildRequestLine(target)); err != nil {
		return "", fmt.Errorf("send request to peer: %w", err)
	}

	localPath := nextAvailableName(destDir, fileName, fileType)
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}

	if err := stream(conn, out, expectedSize, progress); err != nil {
		out.Close()
		_ = os.Remove(localPath)
		return "", err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(localPath)
		return "", fmt.Errorf("close local file: %w", err)
	}
	return localPath, nil
}

// stream copies from conn to out, detecting the 404 sentinel on the first
// chunk and reporting progress on every subsequent chunk. Each read waits
// at most recvTimeoutSeconds for data.
func stream(conn net.Conn, out io.Writer, expectedSize int64, progress ProgressFunc) error {
	buf := make([]byte, chunkSize)
	var written int64
	first := true

	for {
		if err := conn.SetReadDeadline(time.Now().Add(recvTimeoutSeconds * time.Second)); err != nil {
			logger.Debug("peer downloader: failed to set read deadline", logger.Err(err))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if first {
				first = false
				if bytes.HasPrefix(chunk, []byte(notFoundSentinel)) {
					return ErrPeerNotFound
				}
			}
			if _, writeErr := out.Write(chunk); writeErr != nil {
				return fmt.Errorf("write local file: %w", writeErr)
			}
			written += int64(n)
			if progress != nil && expectedSize > 0 {
				progress(int(written * 100 / expectedSize))
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read from peer: %w", err)
		}
	}
}

// nextAvailableName chooses fileName.fileType under destDir if free, else
// fileName(1).fileType, fileName(2).fileType, ... up to (1000); beyond that
// it overwrites fileName.fileType, per the tracker's fixed collision policy.
func nextAvailableName(destDir, fileName, fileType string) string {
	base := fmt.Sprintf("%s.%s", fileName, fileType)
	candidate := filepath.Join(destDir, base)
	if !exists(candidate) {
		return candidate
	}
	for i := 1; i <= 1000; i++ {
		candidate = filepath.Join(destDir, fmt.Sprintf("%s(%d).%s", fileName, i, fileType))
		if !exists(candidate) {
			return candidate
		}
	}
	return filepath.Join(destDir, base)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
