package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
)

// ErrServerClosed is returned by Serve after Shutdown is called.
var ErrServerClosed = errors.New("protocol: server closed")

// Server accepts newline-delimited requests over TCP and answers each with
// a single newline-terminated response. Connections are long-lived: a
// client may issue any number of requests before hanging up.
type Server struct {
	handler *Handler

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	conns    sync.WaitGroup
}

// NewServer returns a server dispatching requests to handler.
func NewServer(handler *Handler) *Server {
	return &Server{handler: handler}
}

// Serve listens on addr and accepts connections until Shutdown. It always
// returns a non-nil error; after a clean Shutdown the error is
// ErrServerClosed.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	log.Printf("listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				s.conns.Wait()
				return ErrServerClosed
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serveConn(conn)
		}()
	}
}

// Addr reports the listener's address, useful when Serve was given ":0".
// It returns nil before Serve has bound the listener.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight ones to
// drain. It is safe to call more than once.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closed = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	s.conns.Wait()
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	// Timeline records are the widest; a response carrying a few hundred of
	// them outgrows the default scanner buffer, and requests share the limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		resp := s.handler.Handle(scanner.Text())
		if _, err := fmt.Fprintf(conn, "%s\n", resp.Encode()); err != nil {
			log.Printf("write to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("read from %s: %v", conn.RemoteAddr(), err)
	}
}
