package bus

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FrameType distinguishes the two kinds of framed messages exchanged over
// an attach connection once the initial JSON handshake completes.
type FrameType uint8

const (
	// FrameData carries raw client→daemon keyboard/mouse/paste input.
	// Daemon→client output is not framed: it is written to the connection
	// as raw bytes.
	FrameData FrameType = iota
	// FrameControl carries a JSON-encoded ControlMessage: resize
	// notifications, detach requests, and similar out-of-band signals.
	FrameControl
)

// maxFrameLen bounds a single frame's payload, guarding against a
// corrupt or malicious length prefix causing an unbounded allocation.
const maxFrameLen = 16 * 1024 * 1024

var errFrameTooLarge = errors.New("bus: frame exceeds maximum length")

// AttachRequest is the client's opening handshake message, sent once as
// plain JSON (newline-delimited) before the connection switches to the
// framed protocol. Grounded on the *pattern* dcosson-h2's attach.go calls
// (message.Request with Rows/Cols, message.SendResponse) — the type
// definitions themselves weren't present in the retrieval pack, so the
// wire format below is this module's own design for the same handshake
// role: identify the client and its initial terminal size before any
// frame is exchanged.
type AttachRequest struct {
	SessionName string `json:"session_name"`
	ClientName  string `json:"client_name"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}

// AttachResponse is the daemon's reply to an AttachRequest.
type AttachResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	TabID  string `json:"tab_id,omitempty"`
	PaneID string `json:"pane_id,omitempty"`
}

// ControlMessage is the payload of a FrameControl frame.
type ControlMessage struct {
	Type string `json:"type"`
	Rows int    `json:"rows,omitempty"`
	Cols int    `json:"cols,omitempty"`
}

// WriteRequest JSON-encodes req as a single newline-terminated line, the
// handshake's wire form before framing begins.
func WriteRequest(w io.Writer, req *AttachRequest) error {
	enc := json.NewEncoder(w)
	return enc.Encode(req)
}

// ReadRequest decodes one newline-terminated AttachRequest.
func ReadRequest(r io.Reader) (*AttachRequest, error) {
	var req AttachRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode attach request: %w", err)
	}
	return &req, nil
}

// WriteResponse JSON-encodes resp as a single newline-terminated line.
func WriteResponse(w io.Writer, resp *AttachResponse) error {
	enc := json.NewEncoder(w)
	return enc.Encode(resp)
}

// ReadResponse decodes one newline-terminated AttachResponse.
func ReadResponse(r io.Reader) (*AttachResponse, error) {
	var resp AttachResponse
	dec := json.NewDecoder(r)
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode attach response: %w", err)
	}
	return &resp, nil
}

// WriteFrame writes a length-prefixed frame: 1 type byte, a 4-byte
// big-endian payload length, then the payload itself.
func WriteFrame(w io.Writer, t FrameType, payload []byte) error {
	if len(payload) > maxFrameLen {
		return errFrameTooLarge
	}
	header := make([]byte, 5)
	header[0] = byte(t)
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame written by WriteFrame.
func ReadFrame(r io.Reader) (FrameType, []byte, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	t := FrameType(header[0])
	n := binary.BigEndian.Uint32(header[1:])
	if n > maxFrameLen {
		return 0, nil, errFrameTooLarge
	}
	if n == 0 {
		return t, nil, nil
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read frame payload: %w", err)
	}
	return t, payload, nil
}

// WriteControl is a convenience wrapper that JSON-encodes msg and writes
// it as a FrameControl frame.
func WriteControl(w io.Writer, msg ControlMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal control message: %w", err)
	}
	return WriteFrame(w, FrameControl, payload)
}
