// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/schema"
)

// ZapRequest is the parsed form of an inbound ZAP request (SPEC_FULL
// §4.3, §6.3): {version, sequence, domain, ip, identity, mechanism,
// ...credentials}.
type ZapRequest struct {
	Version    string
	SequenceID string
	Domain     string
	IP         string
	Identity   string
	Mechanism  string // "NULL", "PLAIN", "CURVE"
	Username   string
	Password   string
	PublicKey  string
}

// HandshakeService runs the ZAP request/reply loop described in SPEC_FULL
// §4.3: a single goroutine owning the ZAP "socket" (modeled here as a Go
// channel rather than a real inproc://zeromq.zap.01 endpoint, since there
// is no ZeroMQ binding in this dependency set) and an internal control
// channel carrying PAUSE/RESUME/TERMINATE, following the
// steerable-poll-loop shape of every other long-running component in
// this module.
type HandshakeService struct {
	authenticator     Authenticator
	securityLevel     schema.SecurityLevel
	sessionSigningKey []byte // HMAC key for Woodhouse/Stonehouse session tokens; nil disables issuance

	requests chan zapExchange
	control  chan controlCommand
	done     chan struct{}
	running  atomic.Bool

	mu      sync.Mutex
	started bool
}

type controlCommand int

const (
	cmdPause controlCommand = iota
	cmdResume
	cmdTerminate
)

type zapExchange struct {
	request ZapRequest
	reply   chan schema.ZapReply
}

// NewHandshakeService constructs a service gating connections at level
// according to authenticator's policy. sessionSigningKey, if non-nil, is
// the HMAC key used to sign a session token embedded in ZapReply.Metadata
// on a successful Woodhouse or Stonehouse handshake, so a client need not
// re-present credentials on every socket it opens to the same operator.
func NewHandshakeService(level schema.SecurityLevel, authenticator Authenticator, sessionSigningKey []byte) *HandshakeService {
	return &HandshakeService{
		authenticator:     authenticator,
		securityLevel:     level,
		sessionSigningKey: sessionSigningKey,
		requests:          make(chan zapExchange, 64),
		control:           make(chan controlCommand, 1),
		done:              make(chan struct{}),
	}
}

// Start runs the handshake poll loop in a new goroutine. Idempotent:
// calling Start twice is a no-op.
func (s *HandshakeService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.running.Store(true)
	go s.loop()
}

func (s *HandshakeService) loop() {
	defer close(s.done)
	paused := false
	handle := func(cmd controlCommand) (terminate bool) {
		switch cmd {
		case cmdPause:
			paused = true
		case cmdResume:
			paused = false
		case cmdTerminate:
			return true
		}
		return false
	}
	for {
		// A pending control command is applied before the next request.
		select {
		case cmd := <-s.control:
			if handle(cmd) {
				return
			}
			continue
		default:
		}
		select {
		case cmd := <-s.control:
			if handle(cmd) {
				return
			}
		case exchange := <-s.requests:
			if paused {
				exchange.reply <- schema.ZapReply{
					Version: exchange.request.Version, SequenceID: exchange.request.SequenceID,
					StatusCode: schema.StatusServerError, StatusText: "handshake service paused",
				}
				continue
			}
			exchange.reply <- s.evaluate(exchange.request)
		}
	}
}

// Stop sends TERMINATE and waits for the loop to exit after sending any
// in-flight reply. Idempotent.
func (s *HandshakeService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.control <- cmdTerminate
	<-s.done
}

// Pause suspends request processing without tearing down the loop.
func (s *HandshakeService) Pause() { s.control <- cmdPause }

// Resume reverses Pause.
func (s *HandshakeService) Resume() { s.control <- cmdResume }

// Authenticate submits req to the handshake loop and blocks for its
// reply, or until ctx is done.
func (s *HandshakeService) Authenticate(ctx context.Context, req ZapRequest) (schema.ZapReply, error) {
	replyCh := make(chan schema.ZapReply, 1)
	select {
	case s.requests <- zapExchange{request: req, reply: replyCh}:
	case <-ctx.Done():
		return schema.ZapReply{}, ctx.Err()
	}
	select {
	case reply := <-replyCh:
		return reply, nil
	case <-ctx.Done():
		return schema.ZapReply{}, ctx.Err()
	}
}

// evaluate applies the configured security level's checks in order.
func (s *HandshakeService) evaluate(req ZapRequest) schema.ZapReply {
	reply := schema.ZapReply{Version: req.Version, SequenceID: req.SequenceID}

	if s.securityLevel == schema.Grasslands {
		reply.StatusCode, reply.StatusText = schema.StatusOK, "OK"
		return reply
	}

	if s.authenticator == nil {
		reply.StatusCode, reply.StatusText = schema.StatusServerError, "no authenticator configured"
		return reply
	}

	if s.authenticator.IsBlacklisted(req.IP) {
		reply.StatusCode, reply.StatusText = schema.StatusClientError, "IP address blacklisted"
		return reply
	}
	if !s.authenticator.IsWhitelisted(req.IP) {
		reply.StatusCode, reply.StatusText = schema.StatusClientError, "IP address not whitelisted"
		return reply
	}

	if s.securityLevel == schema.Strawhouse {
		reply.StatusCode, reply.StatusText = schema.StatusOK, "OK"
		return reply
	}

	switch s.securityLevel {
	case schema.Woodhouse:
		if req.Mechanism != "PLAIN" {
			reply.StatusCode, reply.StatusText = schema.StatusClientError, "mechanism unsupported at this security level"
			return reply
		}
		status, text, user := s.authenticator.ValidatePassword(context.Background(), req.Username, req.Password)
		reply.StatusCode, reply.StatusText = status, text
		if user != nil {
			reply.UserID = strconv.FormatInt(user.ID, 10)
			reply.Metadata = s.issueSessionToken(user)
		}
		return reply
	case schema.Stonehouse:
		if req.Mechanism != "CURVE" {
			reply.StatusCode, reply.StatusText = schema.StatusClientError, "mechanism unsupported at this security level"
			return reply
		}
		status, text, user := s.authenticator.ValidatePublicKey(context.Background(), req.PublicKey)
		reply.StatusCode, reply.StatusText = status, text
		if user != nil {
			reply.UserID = strconv.FormatInt(user.ID, 10)
			reply.Metadata = s.issueSessionToken(user)
		}
		return reply
	}

	reply.StatusCode, reply.StatusText = schema.StatusServerError, "unrecognized security level"
	log.Errorf("auth: unrecognized security level %v", s.securityLevel)
	return reply
}

// issueSessionToken signs a short-lived HMAC session token for user, or
// returns nil if no signing key was configured. The token is opaque to
// every pattern socket; only a component that itself holds
// sessionSigningKey (e.g. the connection information service) would ever
// need to verify one.
func (s *HandshakeService) issueSessionToken(user *schema.User) []byte {
	if s.sessionSigningKey == nil {
		return nil
	}
	claims := jwt.MapClaims{
		"sub":        strconv.FormatInt(user.ID, 10),
		"name":       user.Name,
		"privileges": int(user.Privileges),
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(8 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSigningKey)
	if err != nil {
		log.Errorf("auth: signing session token: %v", err)
		return nil
	}
	return []byte(token)
}

// VerifySessionToken parses and validates a token minted by
// issueSessionToken, returning the subject's user ID.
func (s *HandshakeService) VerifySessionToken(token []byte) (string, error) {
	parsed, err := jwt.Parse(string(token), func(t *jwt.Token) (interface{}, error) {
		return s.sessionSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("auth: invalid session token")
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

// ZapOptions configures the authentication posture of a single pattern
// socket, a value type per SPEC_FULL §4.3.
type ZapOptions struct {
	SecurityLevel   schema.SecurityLevel
	Domain          string
	IsServer        bool
	ServerPublicKey string
	ClientPublicKey string
	ClientSecretKey string
	Username        string
	Password        string
}
