package docdbclient_test

import (
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/konbelyavskyi/docdb/internal/protocol"
	"github.com/konbelyavskyi/docdb/pkg/docdbclient"
)

func startTestServer(t *testing.T) (addr string, shutdown func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			cmd, err := protocol.DecodeCommand(conn)
			if err != nil {
				return
			}

			var resp protocol.Response

			switch strings.ToLower(cmd.Cmd) {
			case "ping":
				resp = protocol.Response{Ok: true, Data: []byte("PONG!")}
			case "insert", "update", "remove":
				resp = protocol.Response{Ok: true}
			case "get":
				resp = protocol.Response{Ok: true, Data: []byte("value:" + strconv.FormatInt(cmd.ID, 10))}
			case "exists":
				resp = protocol.Response{Ok: true, Data: []byte("true")}
			default:
				resp = protocol.Response{Ok: false, Err: "unknown command"}
			}

			encoded, _ := protocol.EncodeResponse(resp)
			_, _ = conn.Write(encoded)
		}
	}()

	return ln.Addr().String(), func() {
		_ = ln.Close()
	}
}

func mustConnect(t *testing.T, addr string) *docdbclient.Client {
	t.Helper()

	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	client, err := docdbclient.Connect(
		docdbclient.WithHost(host),
		docdbclient.WithPort(port),
	)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	return client
}

func TestClientPing(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := mustConnect(t, addr)
	defer client.Close()

	resp, err := client.Ping()
	if err != nil {
		t.Fatal(err)
	}
	if resp != "PONG!" {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestClientInsertAndGet(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := mustConnect(t, addr)
	defer client.Close()

	if err := client.Insert(1, []byte("payload")); err != nil {
		t.Fatal(err)
	}

	data, err := client.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "value:1" {
		t.Fatalf("unexpected response: %q", data)
	}
}

func TestClientExists(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := mustConnect(t, addr)
	defer client.Close()

	ok, err := client.Exists(1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestClientRemove(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := mustConnect(t, addr)
	defer client.Close()

	if err := client.Remove(1); err != nil {
		t.Fatal(err)
	}
}

func TestClientExecute(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := mustConnect(t, addr)
	defer client.Close()

	resp, err := client.Execute("ping", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Data) != "PONG!" {
		t.Fatalf("unexpected response: %q", resp.Data)
	}
}

func TestClientUnknownCommandReturnsError(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	client := mustConnect(t, addr)
	defer client.Close()

	if _, err := client.Execute("bogus", 0, nil); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}
