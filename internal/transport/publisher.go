package transport

import (
	"log"
	"net"
	"strconv"
	"sync"
)

// PublishServer is the simulator-side NDJSON publisher: a TCP server that
// serves exactly one client at a time. A newly accepted client replaces and
// closes the previous one. Accept, Send and Close are safe to call from
// different goroutines.
type PublishServer struct {
	host string
	port int

	mu     sync.Mutex
	ln     net.Listener
	client net.Conn
}

// NewPublishServer creates a publish server for the given bind address.
func NewPublishServer(host string, port int) *PublishServer {
	return &PublishServer{host: host, port: port}
}

// Start binds and listens. The bound address is available via Addr, which
// matters when port 0 was requested.
func (s *PublishServer) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Printf("[sim] TCP server listening on %s", ln.Addr())
	return nil
}

// Addr returns the listener address, or nil before Start.
func (s *PublishServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// AcceptOne blocks until a client connects, replacing any previous client.
// Returns an error when the listener is closed.
func (s *PublishServer) AcceptOne() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return net.ErrClosed
	}

	conn, err := ln.Accept()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.client != nil {
		s.client.Close()
	}
	s.client = conn
	s.mu.Unlock()

	log.Printf("[sim] client connected from %s", conn.RemoteAddr())
	return nil
}

// HasClient reports whether a client is currently connected.
func (s *PublishServer) HasClient() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Send writes one message as an NDJSON line to the connected client. With
// no client it does nothing. A write failure closes and clears the client;
// the caller is expected to go back to AcceptOne.
func (s *PublishServer) Send(msg any) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	conn := s.client
	s.mu.Unlock()
	if conn == nil {
		return nil
	}

	if _, err := conn.Write(data); err != nil {
		s.mu.Lock()
		if s.client == conn {
			conn.Close()
			s.client = nil
		}
		s.mu.Unlock()
		log.Println("[sim] client disconnected")
	}
	return nil
}

// Close shuts the client and listener down. Safe to call more than once.
func (s *PublishServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
}
