package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Response is a decoded server reply. Ok is false when Err names a
// failure (e.g. "not found"); Data carries the payload for a
// successful GET or EXISTS.
type Response struct {
	Ok   bool
	Err  string
	Data []byte
}

// EncodeResponse serializes resp into its wire format:
//
//	<ok:uint8><err_len:uint32><data_len:uint32><err><data>
func EncodeResponse(resp Response) ([]byte, error) {
	errB := []byte(resp.Err)

	buf := &bytes.Buffer{}
	ok := uint8(0)
	if resp.Ok {
		ok = 1
	}
	buf.WriteByte(ok)
	if err := binary.Write(buf, binary.BigEndian, uint32(len(errB))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(resp.Data))); err != nil {
		return nil, err
	}
	buf.Write(errB)
	buf.Write(resp.Data)

	return buf.Bytes(), nil
}

// DecodeResponse reads and decodes one Response from r.
func DecodeResponse(r io.Reader) (Response, error) {
	var ok uint8
	var errLen uint32
	var dataLen uint32

	if err := binary.Read(r, binary.BigEndian, &ok); err != nil {
		return Response{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &errLen); err != nil {
		return Response{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return Response{}, err
	}

	errB := make([]byte, errLen)
	if _, err := io.ReadFull(r, errB); err != nil {
		return Response{}, err
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return Response{}, err
	}

	return Response{Ok: ok == 1, Err: string(errB), Data: data}, nil
}
