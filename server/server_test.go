package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/server"
	"github.com/vkngwrapper/heapsim/timing"
)

func newServer(t *testing.T, options heap.CreateOptions) (*server.Server, *heap.Simulator, *timing.SerialEngine) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := timing.NewSerialEngine()

	sim, err := heap.New(logger, engine, options)
	require.NoError(t, err)

	return server.New(logger, sim, engine, server.Options{}), sim, engine
}

func do(t *testing.T, srv *server.Server, method string, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recorder, request)

	return recorder
}

type allocateResponse struct {
	size        int
	strategy    string
	outOfMemory bool
	blockID     int
	kind        string
}

func readAllocateResponse(t *testing.T, recorder *httptest.ResponseRecorder) allocateResponse {
	var response allocateResponse

	reader := jreader.NewReader(recorder.Body.Bytes())
	for obj := reader.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "Size":
			response.size = reader.Int()
		case "Strategy":
			response.strategy = reader.String()
		case "OutOfMemory":
			response.outOfMemory = reader.Bool()
		case "BlockId":
			response.blockID = reader.Int()
		case "Type":
			response.kind = reader.String()
		default:
			reader.SkipValue()
		}
	}
	require.NoError(t, reader.Error())

	return response
}

func TestAllocateAndFree(t *testing.T) {
	srv, sim, engine := newServer(t, heap.CreateOptions{HeapSize: 880})

	recorder := do(t, srv, http.MethodPost, "/api/allocate", `{"size": 96, "strategy": "best-fit"}`)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	require.Equal(t, allocateResponse{
		size:     96,
		strategy: "best-fit",
		blockID:  1,
		kind:     "Split",
	}, readAllocateResponse(t, recorder))

	recorder = do(t, srv, http.MethodPost, "/api/allocate", `{"size": 16}`)
	require.Equal(t, http.StatusConflict, recorder.Code)

	require.NoError(t, engine.Run())
	require.Len(t, sim.Blocks(), 2)

	recorder = do(t, srv, http.MethodGet, "/api/heap", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"UsedBytes":128`)
	require.Contains(t, recorder.Body.String(), `"OperationsDisabled":false`)

	recorder = do(t, srv, http.MethodPost, "/api/blocks/1/free", "")
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"Status":"Freeing block"`)

	require.NoError(t, engine.Run())
	require.Len(t, sim.Blocks(), 1)

	recorder = do(t, srv, http.MethodGet, "/api/trace", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	for _, kind := range []string{"Split", "Free", "MergeStep", "Finalize"} {
		require.Contains(t, recorder.Body.String(), `"Kind":"`+kind+`"`)
	}
}

func TestAllocateClampsAndDefaults(t *testing.T) {
	srv, _, engine := newServer(t, heap.CreateOptions{})

	recorder := do(t, srv, http.MethodPost, "/api/allocate", `{"size": 100000}`)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	response := readAllocateResponse(t, recorder)
	require.Equal(t, heap.MaxAllocationSize, response.size)
	require.Equal(t, "first-fit", response.strategy)
	require.NoError(t, engine.Run())

	recorder = do(t, srv, http.MethodPost, "/api/allocate", "")
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.Equal(t, heap.DefaultAllocationSize, readAllocateResponse(t, recorder).size)
}

func TestAllocateOutOfMemory(t *testing.T) {
	srv, _, _ := newServer(t, heap.CreateOptions{HeapSize: 64})

	recorder := do(t, srv, http.MethodPost, "/api/allocate", `{"size": 64}`)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.True(t, readAllocateResponse(t, recorder).outOfMemory)
	require.Contains(t, recorder.Body.String(), heap.MessageOutOfMemory)
}

func TestBadRequests(t *testing.T) {
	srv, _, _ := newServer(t, heap.CreateOptions{})

	testCases := map[string]struct {
		method   string
		path     string
		body     string
		expected int
	}{
		"MalformedBody":   {method: http.MethodPost, path: "/api/allocate", body: `{"size":`, expected: http.StatusBadRequest},
		"WrongSizeType":   {method: http.MethodPost, path: "/api/allocate", body: `{"size": "big"}`, expected: http.StatusBadRequest},
		"UnknownStrategy": {method: http.MethodPost, path: "/api/allocate", body: `{"strategy": "next-fit"}`, expected: http.StatusBadRequest},
		"BlockNotNumber":  {method: http.MethodPost, path: "/api/blocks/abc/free", expected: http.StatusBadRequest},
		"UnknownBlock":    {method: http.MethodPost, path: "/api/blocks/99/free", expected: http.StatusNotFound},
		"FreeBlock":       {method: http.MethodPost, path: "/api/blocks/1/free", expected: http.StatusConflict},
		"WrongMethod":     {method: http.MethodGet, path: "/api/allocate", expected: http.StatusMethodNotAllowed},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			recorder := do(t, srv, testCase.method, testCase.path, testCase.body)
			require.Equal(t, testCase.expected, recorder.Code)
		})
	}
}

func TestResetDuringOperation(t *testing.T) {
	srv, sim, engine := newServer(t, heap.CreateOptions{})

	recorder := do(t, srv, http.MethodPost, "/api/allocate", `{"size": 64}`)
	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.True(t, sim.OperationsDisabled())

	recorder = do(t, srv, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.False(t, sim.OperationsDisabled())
	require.Zero(t, engine.Pending())
	require.Contains(t, recorder.Body.String(), `"FreeBlocks":1`)
}

func TestRunClockAdvancesEngine(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := timing.NewSerialEngine()
	sim, err := heap.New(logger, engine, heap.CreateOptions{Delays: heap.Delays{
		Split:       time.Millisecond,
		SplitSettle: time.Millisecond,
	}})
	require.NoError(t, err)

	srv := server.New(logger, sim, engine, server.Options{TickInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.RunClock(ctx)
		close(done)
	}()

	recorder := do(t, srv, http.MethodPost, "/api/allocate", `{"size": 64}`)
	require.Equal(t, http.StatusAccepted, recorder.Code)

	require.Eventually(t, func() bool {
		return !sim.OperationsDisabled() && len(sim.Blocks()) == 2
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	<-done
	require.Greater(t, engine.Now(), time.Duration(0))
}

func TestAllocateAcceptsKeysInAnyCase(t *testing.T) {
	for _, body := range []string{
		`{"Size": 96, "Strategy": "best-fit"}`,
		`{"SIZE": 96, "strategy": "best-fit"}`,
	} {
		t.Run(body, func(t *testing.T) {
			srv, _, engine := newServer(t, heap.CreateOptions{HeapSize: 880})

			recorder := do(t, srv, http.MethodPost, "/api/allocate", body)
			require.Equal(t, http.StatusAccepted, recorder.Code)

			response := readAllocateResponse(t, recorder)
			require.Equal(t, 96, response.size)
			require.Equal(t, "best-fit", response.strategy)
			require.NoError(t, engine.Run())
		})
	}
}
