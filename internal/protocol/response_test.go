package protocol_test

import (
	"net"
	"testing"
	"time"

	"github.com/konbelyavskyi/docdb/internal/protocol"
)

func TestEncodeDecodeResponse(t *testing.T) {
	tests := []struct {
		name string
		resp protocol.Response
	}{
		{"ok with data", protocol.Response{Ok: true, Data: []byte("hello")}},
		{"ok empty data", protocol.Response{Ok: true}},
		{"not found error", protocol.Response{Ok: false, Err: "engine: record not found"}},
		{"binary data", protocol.Response{Ok: true, Data: []byte{0x00, 0xff, 0x10}}},
		{"large data", protocol.Response{Ok: true, Data: make([]byte, 2048)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			payload, err := protocol.EncodeResponse(tt.resp)
			if err != nil {
				t.Fatalf("EncodeResponse failed: %v", err)
			}

			go func() {
				_, _ = client.Write(payload)
			}()

			resp, err := protocol.DecodeResponse(server)
			if err != nil {
				t.Fatalf("DecodeResponse failed: %v", err)
			}

			if resp.Ok != tt.resp.Ok {
				t.Errorf("Ok mismatch: got %v, want %v", resp.Ok, tt.resp.Ok)
			}
			if resp.Err != tt.resp.Err {
				t.Errorf("Err mismatch: got %q, want %q", resp.Err, tt.resp.Err)
			}
			if string(resp.Data) != string(tt.resp.Data) {
				t.Errorf("Data mismatch: got %v, want %v", resp.Data, tt.resp.Data)
			}
		})
	}
}

func TestDecodeResponse_TruncatedPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload, err := protocol.EncodeResponse(protocol.Response{Ok: true, Data: []byte("hello world")})
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}

	go func() {
		_, _ = client.Write(payload[:len(payload)/2])
		client.Close()
	}()

	if _, err := protocol.DecodeResponse(server); err == nil {
		t.Fatalf("expected error on truncated response, got nil")
	}
}

func TestDecodeResponse_BlocksUntilComplete(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload, err := protocol.EncodeResponse(protocol.Response{Ok: true, Data: []byte("blocking test")})
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}

	done := make(chan struct{})

	go func() {
		_, _ = protocol.DecodeResponse(server)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("DecodeResponse returned early")
	case <-time.After(50 * time.Millisecond):
	}

	_, _ = client.Write(payload)

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("DecodeResponse did not return after full payload")
	}
}
