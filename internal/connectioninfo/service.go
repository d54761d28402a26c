// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package connectioninfo

import (
	"fmt"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/internal/sockets"
	"github.com/uofuseismo/umps/pkg/schema"
)

// Service answers register/deregister/list/query requests against a
// Registry over a Router (SPEC_FULL's package-map entry for this
// component).
type Service struct {
	registry *Registry
	router   *sockets.Router
}

// NewService returns an unstarted Service backed by a fresh Registry.
func NewService(ioc *ioctx.Context) *Service {
	return &Service{
		registry: NewRegistry(),
		router:   sockets.NewRouter(ioc),
	}
}

// Start binds the Router to opts.Address and begins answering requests.
func (s *Service) Start(opts sockets.Options) error {
	return s.router.Initialize(opts, s.handleRequest)
}

// Stop releases the Router.
func (s *Service) Stop() {
	s.router.Disconnect()
}

func (s *Service) handleRequest(typeTag string, payload []byte) schema.Message {
	switch typeTag {
	case (&schema.RegisterRequest{}).TypeTag():
		var req schema.RegisterRequest
		if err := req.FromCBOR(payload); err != nil {
			return failureMessage(err)
		}
		s.registry.Register(req.Details)
		return encodeOrFail(&schema.RegisterResponse{})

	case (&schema.DeregisterRequest{}).TypeTag():
		var req schema.DeregisterRequest
		if err := req.FromCBOR(payload); err != nil {
			return failureMessage(err)
		}
		s.registry.Deregister(req.Name)
		return encodeOrFail(&schema.DeregisterResponse{})

	case (&schema.ListRequest{}).TypeTag():
		return encodeOrFail(&schema.ListResponse{Connections: s.registry.List()})

	case (&schema.QueryRequest{}).TypeTag():
		var req schema.QueryRequest
		if err := req.FromCBOR(payload); err != nil {
			return failureMessage(err)
		}
		details, found := s.registry.Query(req.Name)
		return encodeOrFail(&schema.QueryResponse{Found: found, Details: details})

	default:
		return failureMessage(fmt.Errorf("unknown request type %q", typeTag))
	}
}

func encodeOrFail(m schema.Marshaler) schema.Message {
	msg, err := schema.EncodeMessage(m, "1.0")
	if err != nil {
		return failureMessage(err)
	}
	return msg
}

func failureMessage(err error) schema.Message {
	msg, encErr := schema.EncodeMessage(&schema.Failure{Detail: err.Error()}, "1.0")
	if encErr != nil {
		return schema.Message{TypeTag: (&schema.Failure{}).TypeTag()}
	}
	return msg
}
