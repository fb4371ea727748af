// Package peer implements the peer transfer protocol: a Peer Listener that
// accepts one-shot TCP connections and hands each to a Peer Sender, and a
// Peer Downloader that drives the client side of the same wire format.
//
// The protocol itself is deliberately minimal: one request line, then raw
// bytes until EOF, with a literal "HTTP/1.1 404 Not Found" line standing in
// for a missing file. There is no length framing; see notFoundSentinel for
// the compatibility hazard that implies.
package peer

import (
	"bufio"
	"fmt"
	"strings"
)

// notFoundSentinel is written verbatim, and nothing else, when the
// requested path does not exist. The downloader treats a first chunk that
// begins with this exact byte sequence as a miss rather than file content.
const notFoundSentinel = "HTTP/1.1 404 Not Found\n"

// chunkSize bounds every read/write on the wire to the fixed size the
// protocol was designed around.
const chunkSize = 1024

// recvTimeoutSeconds is the Peer Downloader's fixed connect/receive timeout.
const recvTimeoutSeconds = 10

// encodeTarget percent-encodes exactly U+0020 as %20, per the protocol's
// narrow escaping rule (not the full URL-encoding suite).
func encodeTarget(path string) string {
	return strings.ReplaceAll(path, " ", "%20")
}

// decodeTarget reverses encodeTarget.
func decodeTarget(encoded string) string {
	return strings.ReplaceAll(encoded, "%20", " ")
}

// buildRequestLine renders the wire request for target.
func buildRequestLine(target string) string {
	return fmt.Sprintf("GET %s\n", encodeTarget(target))
}

// parseRequestLine extracts the decoded target path from a single protocol
// request line, e.g. "GET /home/a/report.pdf\n".
func parseRequestLine(line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	const prefix = "GET "
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("peer protocol: malformed request line %q", line)
	}
	return decodeTarget(strings.TrimPrefix(line, prefix)), nil
}

// readRequestLine reads exactly one newline-terminated request line from r.
func readRequestLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return parseRequestLine(line)
}
