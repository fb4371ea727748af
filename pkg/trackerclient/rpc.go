package trackerclient

import (
	"fmt"
	"strconv"
)

// ConnectResult is the outcome of ConnectToServer or ResumeSession: a tag
// plus the token issued on any non-failure tag.
type ConnectResult struct {
	Tag   string
	Token string
}

// SimpleResult is the outcome of an operation whose success shape carries
// only a tag and a human-readable message.
type SimpleResult struct {
	Tag     string
	Message string
}

// FileEntry is one row of a GetUserFiles response.
type FileEntry struct {
	FileID uint64
	Name   string
	Type   string
	Path   string
	Size   int64
}

// SearchHit is one row of a SearchFile response.
type SearchHit struct {
	FileID uint64
	Name   string
	Type   string
	Size   int64
}

// Host is one row of a GetFileHostInfo response.
type Host struct {
	IP   string
	Port int
	Path string
}

// ConnectToServer logs in as name, returning the token the tracker issued.
func (c *Client) ConnectToServer(name, password, ip string, port int) (ConnectResult, error) {
	fields, err := c.call("connectToServer", map[string]any{
		"name": name, "password": password, "ip": ip, "port": port,
	})
	if err != nil {
		return ConnectResult{}, err
	}
	result := ConnectResult{Tag: fields[0]}
	if len(fields) > 1 {
		result.Token = fields[1]
	}
	return result, nil
}

// ResumeSession re-authenticates a possibly-stale session, rotating the token.
func (c *Client) ResumeSession(token, name, ip string, port int) (ConnectResult, error) {
	fields, err := c.call("resumeSession", map[string]any{
		"token": token, "name": name, "ip": ip, "port": port,
	})
	if err != nil {
		return ConnectResult{}, err
	}
	result := ConnectResult{Tag: fields[0]}
	if len(fields) > 1 {
		result.Token = fields[1]
	}
	return result, nil
}

// DisconnectFromServer ends the session identified by (token, name).
func (c *Client) DisconnectFromServer(token, name string) (SimpleResult, error) {
	return c.simpleCall("disconnectFromServer", map[string]any{"token": token, "name": name})
}

// SendHeartBeat refreshes the session's liveness timestamp.
func (c *Client) SendHeartBeat(token, name string) (SimpleResult, error) {
	return c.simpleCall("sendHeartBeat", map[string]any{"token": token, "name": name})
}

// RegisterFile advertises a file under name's catalog.
func (c *Client) RegisterFile(token, name, fileName, fileType, filePath string, fileSize int64) (SimpleResult, error) {
	return c.simpleCall("registerFile", map[string]any{
		"token": token, "name": name,
		"file_name": fileName, "file_type": fileType, "file_path": filePath, "file_size": fileSize,
	})
}

// DeregisterFile removes a previously registered file.
func (c *Client) DeregisterFile(token, name, fileName, fileType, filePath string) (SimpleResult, error) {
	return c.simpleCall("deregisterFile", map[string]any{
		"token": token, "name": name,
		"file_name": fileName, "file_type": fileType, "file_path": filePath,
	})
}

func (c *Client) simpleCall(operation string, body any) (SimpleResult, error) {
	fields, err := c.call(operation, body)
	if err != nil {
		return SimpleResult{}, err
	}
	result := SimpleResult{Tag: fields[0]}
	if len(fields) > 1 {
		result.Message = fields[1]
	}
	return result, nil
}

// GetUserFiles lists every file name has registered.
func (c *Client) GetUserFiles(token, name string) (string, []FileEntry, error) {
	fields, err := c.call("getUserFiles", map[string]any{"token": token, "name": name})
	if err != nil {
		return "", nil, err
	}
	tag := fields[0]
	if tag != "OK" {
		return tag, nil, nil
	}

	rows := fields[1:]
	if len(rows)%5 != 0 {
		return "", nil, fmt.Errorf("getUserFiles: malformed response, %d trailing fields", len(rows))
	}
	entries := make([]FileEntry, 0, len(rows)/5)
	for i := 0; i < len(rows); i += 5 {
		fileID, err := strconv.ParseUint(rows[i], 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("getUserFiles: bad file_id %q: %w", rows[i], err)
		}
		size, err := strconv.ParseInt(rows[i+4], 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("getUserFiles: bad size %q: %w", rows[i+4], err)
		}
		entries = append(entries, FileEntry{
			FileID: fileID, Name: rows[i+1], Type: rows[i+2], Path: rows[i+3], Size: size,
		})
	}
	return tag, entries, nil
}

// SearchFile looks up files matching query, excluding name's own rows.
func (c *Client) SearchFile(token, name, query string) (string, []SearchHit, error) {
	fields, err := c.call("searchFile", map[string]any{"token": token, "name": name, "query": query})
	if err != nil {
		return "", nil, err
	}
	tag := fields[0]
	if tag != "OK" {
		return tag, nil, nil
	}

	rows := fields[1:]
	if len(rows)%4 != 0 {
		return "", nil, fmt.Errorf("searchFile: malformed response, %d trailing fields", len(rows))
	}
	hits := make([]SearchHit, 0, len(rows)/4)
	for i := 0; i < len(rows); i += 4 {
		fileID, err := strconv.ParseUint(rows[i], 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("searchFile: bad file_id %q: %w", rows[i], err)
		}
		size, err := strconv.ParseInt(rows[i+3], 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("searchFile: bad size %q: %w", rows[i+3], err)
		}
		hits = append(hits, SearchHit{FileID: fileID, Name: rows[i+1], Type: rows[i+2], Size: size})
	}
	return tag, hits, nil
}

// GetFileHostInfo resolves which live peers currently host fileID.
func (c *Client) GetFileHostInfo(token, name string, fileID uint64) (string, []Host, error) {
	fields, err := c.call("getFileHostInfo", map[string]any{"token": token, "name": name, "file_id": fileID})
	if err != nil {
		return "", nil, err
	}
	tag := fields[0]
	if tag != "OK" {
		return tag, nil, nil
	}

	rows := fields[1:]
	if len(rows)%3 != 0 {
		return "", nil, fmt.Errorf("getFileHostInfo: malformed response, %d trailing fields", len(rows))
	}
	hosts := make([]Host, 0, len(rows)/3)
	for i := 0; i < len(rows); i += 3 {
		port, err := strconv.Atoi(rows[i+1])
		if err != nil {
			return "", nil, fmt.Errorf("getFileHostInfo: bad port %q: %w", rows[i+1], err)
		}
		hosts = append(hosts, Host{IP: rows[i], Port: port, Path: rows[i+2]})
	}
	return tag, hosts, nil
}
