package timing_test

import (
	"bytes"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/vkngwrapper/heapsim/timing"
)

var _ = Describe("EventLogger", func() {
	It("should log each event once at debug level", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		engine := timing.NewSerialEngine()
		engine.AcceptHook(timing.NewEventLogger(logger))

		handler := &recordingHandler{engine: engine}
		evt := handler.at(time.Second, "a")
		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		Expect(bytes.Count(buf.Bytes(), []byte("Engine::Event"))).To(Equal(1))
		Expect(buf.String()).To(ContainSubstring(evt.ID()))
		Expect(buf.String()).To(ContainSubstring("timing_test.namedEvent"))
	})

	It("should stay quiet above debug level", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		engine := timing.NewSerialEngine()
		engine.AcceptHook(timing.NewEventLogger(logger))

		handler := &recordingHandler{engine: engine}
		engine.Schedule(handler.at(time.Second, "a"))

		Expect(engine.Run()).To(Succeed())
		Expect(buf.Len()).To(BeZero())
	})
})
