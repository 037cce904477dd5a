package server

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/trace"
)

const maxBodySize = 4096

func writeJson(w http.ResponseWriter, status int, writer *jwriter.Writer) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(writer.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Error").String(err.Error())
	obj.End()

	writeJson(w, status, &writer)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, heap.ErrOperationsDisabled), errors.Is(err, heap.ErrBlockNotAllocated):
		return http.StatusConflict
	case errors.Is(err, heap.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, heap.ErrInvalidSize), errors.Is(err, heap.ErrUnknownStrategy):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func (s *Server) writeHeap(w http.ResponseWriter, status int) {
	writer := jwriter.NewWriter()
	s.sim.PrintDetailedMap(&writer)
	writeJson(w, status, &writer)
}

func (s *Server) getHeap(w http.ResponseWriter, _ *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.writeHeap(w, http.StatusOK)
}

type allocateRequest struct {
	size     int
	strategy metadata.AllocationStrategy
}

func (s *Server) parseAllocateRequest(body []byte) (allocateRequest, error) {
	request := allocateRequest{size: s.defaultSize, strategy: s.defaultStrategy}
	if len(body) == 0 {
		return request, nil
	}

	reader := jreader.NewReader(body)
	for obj := reader.Object(); obj.Next(); {
		switch strings.ToLower(string(obj.Name())) {
		case "size":
			request.size = s.limits.Clamp(reader.Int())
		case "strategy":
			strategy, err := metadata.ParseAllocationStrategy(reader.String())
			if err != nil {
				return request, err
			}
			request.strategy = strategy
		default:
			reader.SkipValue()
		}
	}

	err := reader.Error()
	if err != nil {
		return request, errors.Mark(errors.Wrap(err, "malformed allocation request"), heap.ErrInvalidSize)
	}

	return request, nil
}

func (s *Server) allocate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	request, err := s.parseAllocateRequest(body)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	result, err := s.sim.Allocate(request.size, request.strategy)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	writer := jwriter.NewWriter()
	obj := writer.Object()
	obj.Name("Size").Int(request.size)
	obj.Name("Strategy").String(request.strategy.String())
	obj.Name("OutOfMemory").Bool(result.OutOfMemory)
	if !result.OutOfMemory {
		obj.Name("BlockId").Int(int(result.Request.BlockID))
		obj.Name("Type").String(result.Request.Type.String())
	}
	obj.Name("Status").String(s.sim.Status())
	obj.End()

	writeJson(w, http.StatusAccepted, &writer)
}

func (s *Server) free(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		s.writeError(w, r, http.StatusBadRequest, errors.Newf("invalid block id %q", chi.URLParam(r, "id")))
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	err = s.sim.Free(metadata.BlockID(id))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	s.writeHeap(w, http.StatusAccepted)
}

func (s *Server) reset(w http.ResponseWriter, _ *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.sim.Reset()
	s.writeHeap(w, http.StatusOK)
}

func (s *Server) getTrace(w http.ResponseWriter, _ *http.Request) {
	writer := jwriter.NewWriter()
	trace.WriteRecordsJson(&writer, s.trace.Records())
	writeJson(w, http.StatusOK, &writer)
}
