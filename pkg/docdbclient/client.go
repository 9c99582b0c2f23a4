// Package docdbclient provides a client for talking to a docdb-server
// instance over TCP.
//
// Example:
//
//	client, err := docdbclient.Connect()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Insert(1, []byte("payload"))
//	data, err := client.Get(1)
package docdbclient

import (
	"errors"
	"fmt"
	"net"

	"github.com/konbelyavskyi/docdb/internal/protocol"
)

// ErrNotFound mirrors engine.ErrNotFound on the client side, without
// pulling in the server-only engine package.
var ErrNotFound = errors.New("docdbclient: not found")

type Client struct {
	conn net.Conn
}

func Connect(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn}, nil
}

func (c *Client) Ping() (string, error) {
	resp, err := c.sendCommand("ping", 0, nil)
	if err != nil {
		return "", err
	}
	return string(resp.Data), nil
}

func (c *Client) Exists(id int64) (bool, error) {
	resp, err := c.sendCommand("exists", id, nil)
	if err != nil {
		return false, err
	}
	return string(resp.Data) == "true", nil
}

func (c *Client) Get(id int64) ([]byte, error) {
	resp, err := c.sendCommand("get", id, nil)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Insert(id int64, data []byte) error {
	_, err := c.sendCommand("insert", id, data)
	return err
}

func (c *Client) Update(id int64, data []byte) error {
	_, err := c.sendCommand("update", id, data)
	return err
}

func (c *Client) Remove(id int64) error {
	_, err := c.sendCommand("remove", id, nil)
	return err
}

func (c *Client) Help() (string, error) {
	resp, err := c.sendCommand("help", 0, nil)
	if err != nil {
		return "", err
	}
	return string(resp.Data), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Execute sends an arbitrary command, for use by the CLI's REPL.
func (c *Client) Execute(cmd string, id int64, data []byte) (protocol.Response, error) {
	return c.sendCommand(cmd, id, data)
}

func (c *Client) sendCommand(cmd string, id int64, data []byte) (protocol.Response, error) {
	payload, err := protocol.EncodeCommand(cmd, id, data)
	if err != nil {
		return protocol.Response{}, err
	}

	if _, err := c.conn.Write(payload); err != nil {
		return protocol.Response{}, err
	}

	resp, err := protocol.DecodeResponse(c.conn)
	if err != nil {
		return protocol.Response{}, err
	}
	if !resp.Ok {
		if resp.Err == "not found" {
			return resp, ErrNotFound
		}
		return resp, errors.New(resp.Err)
	}
	return resp, nil
}
