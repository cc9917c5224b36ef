package revocation

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordVersionV1 = 1

// State is the lifecycle state of a refresh token record.
type State uint8

const (
	// StateActive marks a refresh token that may still be exchanged once.
	StateActive State = iota
	// StateRotated marks a refresh token that has been exchanged; any further
	// presentation is a replay.
	StateRotated
	// StateRevoked marks a refresh token invalidated by logout, replay
	// response, or administrative action.
	StateRevoked
)

// Terminal reports whether the state permits no further transitions.
func (s State) Terminal() bool {
	return s == StateRotated || s == StateRevoked
}

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateRotated:
		return "rotated"
	case StateRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// RefreshRecord tracks one refresh token identifier from issuance to a
// terminal state. Records are exclusively written by the token service; the
// store entry self-evicts when the token's own lifetime elapses.
type RefreshRecord struct {
	State       State
	PrincipalID string
	SuccessorID string
	CreatedAt   int64
	ExpiresAt   int64
}

func encodeRecord(record *RefreshRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)
	buf.WriteByte(byte(record.State))

	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if err := writeLengthPrefixed(&buf, record.PrincipalID); err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(&buf, record.SuccessorID); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*RefreshRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("revocation: invalid record version")
	}

	state, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if State(state) > StateRevoked {
		return nil, errors.New("revocation: invalid record state")
	}

	record := &RefreshRecord{State: State(state)}

	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	if record.PrincipalID, err = readLengthPrefixed(reader); err != nil {
		return nil, err
	}
	if record.SuccessorID, err = readLengthPrefixed(reader); err != nil {
		return nil, err
	}

	return record, nil
}

func writeLengthPrefixed(buf *bytes.Buffer, value string) error {
	if len(value) > 65535 {
		return errors.New("revocation: record field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(value))); err != nil {
		return err
	}
	buf.WriteString(value)
	return nil
}

func readLengthPrefixed(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(reader, value); err != nil {
		return "", err
	}
	return string(value), nil
}
