// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package packetcache

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/uofuseismo/umps/internal/ioctx"
	"github.com/uofuseismo/umps/internal/sockets"
	"github.com/uofuseismo/umps/pkg/log"
	"github.com/uofuseismo/umps/pkg/resampler"
	"github.com/uofuseismo/umps/pkg/schema"
)

const (
	queueCapacity = 1024
	popTimeout    = 50 * time.Millisecond

	// maxSamplesPerResponse bounds the bandwidth a single
	// InterpolatedResponse can consume; a response longer than this is
	// decimated with resampler.SimpleResampler before it goes out.
	maxSamplesPerResponse = 20000
)

// Service wires a Subscriber, a bounded queue, a CappedCollection, and a
// Router together (SPEC_FULL §4.9): the broadcast pump moves packets off
// the Subscriber, the queue drainer moves them into the collection, and
// the responder answers BulkDataRequest/InterpolatedRequest/SensorRequest
// against whatever the collection currently holds.
type Service struct {
	ioc        *ioctx.Context
	subscriber *sockets.Subscriber
	router     *sockets.Router
	collection *CappedCollection[float64]

	queue chan schema.DataPacket[float64]
	stop  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewService returns an unstarted Service backed by a collection capping
// every channel at maxPackets.
func NewService(ioc *ioctx.Context, maxPackets int) *Service {
	return &Service{
		ioc:        ioc,
		subscriber: sockets.NewSubscriber(ioc),
		router:     sockets.NewRouter(ioc),
		collection: NewCappedCollection[float64](maxPackets),
		queue:      make(chan schema.DataPacket[float64], queueCapacity),
		stop:       make(chan struct{}),
	}
}

// Start brings the service up in the order SPEC_FULL §4.9 specifies:
// initialize subscriber, initialize router, start responder, start
// drainer, start pump.
func (s *Service) Start(subscriberOpts, routerOpts sockets.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	if err := s.subscriber.Initialize(subscriberOpts); err != nil {
		return fmt.Errorf("packetcache: subscriber: %w", err)
	}
	if err := s.router.Initialize(routerOpts, s.handleRequest); err != nil {
		s.subscriber.Disconnect()
		return fmt.Errorf("packetcache: router: %w", err)
	}

	s.wg.Add(2)
	go s.drain()
	go s.pump()

	s.started = true
	return nil
}

// Stop signals the pump and the drainer together through one stop
// channel and waits for both to exit, then disconnects the subscriber and
// the router. The pump is not stopped ahead of the drainer: packets still
// queued when the drainer exits are not added to the collection.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	s.subscriber.Disconnect()
	s.router.Disconnect()
}

// pump is the broadcast pump: receive() from the subscriber and enqueue,
// while running.
func (s *Service) pump() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		msg, err := s.subscriber.Receive()
		if err != nil {
			log.Warnf("packetcache: receive failed: %v", err)
			continue
		}
		packet, ok := msg.(*schema.DataPacket[float64])
		if !ok || packet == nil {
			continue
		}
		select {
		case s.queue <- *packet:
		default:
			log.Warn("packetcache: queue full, dropping packet")
		}
	}
}

// drain is the queue drainer: pop_blocking(timeout) and add to the
// collection, while running.
func (s *Service) drain() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case packet := <-s.queue:
			s.collection.Add(packet)
		case <-time.After(popTimeout):
		}
	}
}

// handleRequest is the responder's Router callback.
func (s *Service) handleRequest(typeTag string, payload []byte) schema.Message {
	switch typeTag {
	case (&schema.BulkDataRequest{}).TypeTag():
		return s.handleBulkDataRequest(payload)
	case (&schema.InterpolatedRequest{}).TypeTag():
		return s.handleInterpolatedRequest(payload)
	case (&schema.SensorRequest{}).TypeTag():
		return s.handleSensorRequest(payload)
	default:
		return failureMessage(fmt.Errorf("unknown request type %q", typeTag))
	}
}

func (s *Service) handleBulkDataRequest(payload []byte) schema.Message {
	var req schema.BulkDataRequest
	if err := req.FromCBOR(payload); err != nil {
		return failureMessage(err)
	}

	responses := make([]schema.DataResponse, 0, len(req.SNCLList))
	for _, sncl := range req.SNCLList {
		responses = append(responses, schema.DataResponse{
			SNCL:    sncl,
			Packets: s.collection.Query(sncl, req.T0Micro, req.T1Micro),
		})
	}

	msg, err := schema.EncodeMessage(&schema.BulkDataResponse{Responses: responses}, "1.0")
	if err != nil {
		return failureMessage(err)
	}
	return msg
}

func (s *Service) handleInterpolatedRequest(payload []byte) schema.Message {
	var req schema.InterpolatedRequest
	if err := req.FromCBOR(payload); err != nil {
		return failureMessage(err)
	}

	packets := s.collection.Query(req.SNCL, req.T0Micro, req.T1Micro)
	points := flattenPackets(packets)
	if len(points) == 0 {
		return failureMessage(errors.New("packetcache: no data for requested channel/window"))
	}

	result, err := Interpolate(points, req.TargetRateHz, req.GapToleranceMicro)
	if err != nil {
		return failureMessage(err)
	}

	signal := result.Signal
	gaps := result.GapIndicator
	sampleRateHz := result.SampleRateHz
	if len(signal) > maxSamplesPerResponse {
		step := int64((len(signal) + maxSamplesPerResponse - 1) / maxSamplesPerResponse)
		decimated, err := resampler.SimpleResampler(signal, 1, step)
		if err == nil {
			signal = decimated
			gaps = decimateGaps(result.GapIndicator, step)
			sampleRateHz = result.SampleRateHz / float64(step)
			log.Infof("packetcache: decimated interpolated response from %d to %d samples", len(result.Signal), len(signal))
		}
	}

	msg, err := schema.EncodeMessage(&schema.InterpolatedResponse{
		SNCL:           req.SNCL,
		Samples:        signal,
		Gaps:           gaps,
		StartTimeMicro: result.StartTimeMicro,
		SampleRateHz:   sampleRateHz,
	}, "1.0")
	if err != nil {
		return failureMessage(err)
	}
	return msg
}

func (s *Service) handleSensorRequest(payload []byte) schema.Message {
	var req schema.SensorRequest
	if err := req.FromCBOR(payload); err != nil {
		return failureMessage(err)
	}
	msg, err := schema.EncodeMessage(&schema.SensorResponse{SNCLList: s.collection.SNCLs()}, "1.0")
	if err != nil {
		return failureMessage(err)
	}
	return msg
}

// flattenPackets expands every packet's discrete samples into
// (timestamp, value) pairs, per SPEC_FULL §4.8 step 1.
func flattenPackets(packets []schema.DataPacket[float64]) []TimeValue {
	var out []TimeValue
	for _, p := range packets {
		if !p.HaveSamplingRate() || p.NumberOfSamples() == 0 {
			continue
		}
		for k, v := range p.Samples {
			offset := int64(math.Round(float64(k) * 1e6 / p.SamplingRateHz))
			out = append(out, TimeValue{TimeMicro: p.StartTimeMicro + offset, Value: v})
		}
	}
	return out
}

// decimateGaps reduces gaps to the same length resampler.SimpleResampler
// produces for a stride of step, OR-reducing each bucket so a gap
// anywhere in the bucket still marks the decimated sample as gappy.
func decimateGaps(gaps []bool, step int64) []bool {
	s := int(step)
	if s <= 1 {
		return gaps
	}
	newLength := len(gaps) / s
	if newLength == 0 || len(gaps) < 100 || newLength >= len(gaps) {
		return gaps
	}
	out := make([]bool, newLength)
	for i := 0; i < newLength; i++ {
		bucketEnd := (i + 1) * s
		if bucketEnd > len(gaps) {
			bucketEnd = len(gaps)
		}
		for _, g := range gaps[i*s : bucketEnd] {
			if g {
				out[i] = true
				break
			}
		}
	}
	return out
}

func failureMessage(err error) schema.Message {
	msg, encErr := schema.EncodeMessage(&schema.Failure{Detail: err.Error()}, "1.0")
	if encErr != nil {
		return schema.Message{TypeTag: (&schema.Failure{}).TypeTag()}
	}
	return msg
}
