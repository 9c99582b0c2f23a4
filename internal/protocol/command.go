// Package protocol implements the length-prefixed binary wire format
// spoken between docdb-cli/pkg/docdbclient and docdb-server.
package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Command is a decoded client request. Id and Data are only meaningful
// for the commands that use them (INSERT and UPDATE use Data;
// GET, EXISTS, INSERT, UPDATE and REMOVE use Id).
type Command struct {
	Cmd  string
	ID   int64
	Data []byte
}

// EncodeCommand serializes cmd into its wire format:
//
//	<cmd_len:uint8><id:int64><data_len:uint32><cmd><data>
//
// All integer fields are big-endian. The command name is limited to
// 255 bytes.
func EncodeCommand(cmd string, id int64, data []byte) ([]byte, error) {
	cmdB := []byte(cmd)

	buf := &bytes.Buffer{}
	buf.WriteByte(uint8(len(cmdB)))
	if err := binary.Write(buf, binary.BigEndian, id); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	buf.Write(cmdB)
	buf.Write(data)

	return buf.Bytes(), nil
}

// DecodeCommand reads and decodes one Command from r. It blocks until
// the full command has been read or an error occurs.
func DecodeCommand(r io.Reader) (*Command, error) {
	var cmdLen uint8
	var id int64
	var dataLen uint32

	if err := binary.Read(r, binary.BigEndian, &cmdLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &id); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return nil, err
	}

	cmdB := make([]byte, cmdLen)
	if _, err := io.ReadFull(r, cmdB); err != nil {
		return nil, err
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}

	return &Command{Cmd: string(cmdB), ID: id, Data: data}, nil
}
