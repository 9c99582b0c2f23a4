// Package docdbserver wires the generic TCP accept loop in
// internal/server to the docdb facade, decoding one protocol.Command
// per request and encoding a protocol.Response back.
package docdbserver

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/konbelyavskyi/docdb/docdb"
	"github.com/konbelyavskyi/docdb/internal/engine"
	"github.com/konbelyavskyi/docdb/internal/protocol"
	"github.com/konbelyavskyi/docdb/internal/server"
)

// Server dispatches decoded commands to a docdb.DB.
type Server struct {
	db docdb.DB
}

// New returns a Server backed by db.
func New(db docdb.DB) *Server {
	return &Server{db: db}
}

// Start runs the TCP accept loop on port, blocking until ctx is
// cancelled. If port is already in use, server.Start advances to the
// next one, matching the teacher's behavior.
func (s *Server) Start(ctx context.Context, port int) error {
	return server.Start(ctx, port, s.commandHandler)
}

func (s *Server) commandHandler(conn net.Conn) {
	defer conn.Close()

	for {
		cmd, err := protocol.DecodeCommand(conn)
		if err != nil {
			return
		}
		s.handleCommand(cmd, conn)
	}
}

func (s *Server) handleCommand(cmd *protocol.Command, conn net.Conn) {
	switch strings.ToLower(cmd.Cmd) {
	case "ping":
		s.reply(conn, protocol.Response{Ok: true, Data: []byte("PONG!")})
	case "exists":
		s.reply(conn, protocol.Response{Ok: true, Data: []byte(strconv.FormatBool(s.db.Exists(cmd.ID)))})
	case "get":
		s.handleGet(conn, cmd.ID)
	case "insert":
		s.handleWrite(conn, s.db.Insert, cmd.ID, cmd.Data)
	case "update":
		s.handleWrite(conn, s.db.Update, cmd.ID, cmd.Data)
	case "remove":
		s.handleRemove(conn, cmd.ID)
	case "help":
		s.reply(conn, protocol.Response{Ok: true, Data: []byte(helpText)})
	default:
		s.reply(conn, protocol.Response{Ok: false, Err: "unknown command " + cmd.Cmd})
	}
}

func (s *Server) handleGet(conn net.Conn, id int64) {
	doc, err := s.db.Get(id)
	if err != nil {
		s.reply(conn, protocol.Response{Ok: false, Err: errMessage(err)})
		return
	}
	s.reply(conn, protocol.Response{Ok: true, Data: doc.Data})
}

func (s *Server) handleWrite(conn net.Conn, op func(id int64, data []byte) error, id int64, data []byte) {
	if err := op(id, data); err != nil {
		s.reply(conn, protocol.Response{Ok: false, Err: errMessage(err)})
		return
	}
	s.reply(conn, protocol.Response{Ok: true})
}

func (s *Server) handleRemove(conn net.Conn, id int64) {
	if err := s.db.Remove(id); err != nil {
		s.reply(conn, protocol.Response{Ok: false, Err: errMessage(err)})
		return
	}
	s.reply(conn, protocol.Response{Ok: true})
}

func (s *Server) reply(conn net.Conn, resp protocol.Response) {
	encoded, err := protocol.EncodeResponse(resp)
	if err != nil {
		return
	}
	conn.Write(encoded)
}

func errMessage(err error) string {
	if errors.Is(err, engine.ErrNotFound) {
		return "not found"
	}
	return err.Error()
}

const helpText = `Available Commands:

PING
  Check if the server is alive.

EXISTS <id>
  Check if a document exists.

GET <id>
  Retrieve the document for id.

INSERT <id> <data>
  Store data for id, overwriting any existing document.

UPDATE <id> <data>
  Same as INSERT.

REMOVE <id>
  Delete the document for id.

HELP
  Show this help message.

EXIT (cli only)
  Close the client connection.`
