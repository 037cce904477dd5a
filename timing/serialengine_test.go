package timing_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/vkngwrapper/heapsim/timing"
	mock_timing "github.com/vkngwrapper/heapsim/timing/mocks"
	"go.uber.org/mock/gomock"
)

type recordingHandler struct {
	engine *timing.SerialEngine
	seen   []string
	err    error
}

type namedEvent struct {
	timing.EventBase
	name     string
	followUp time.Duration
}

func (h *recordingHandler) Handle(e timing.Event) error {
	evt := e.(namedEvent)
	h.seen = append(h.seen, evt.name)

	if evt.followUp > 0 {
		h.engine.Schedule(namedEvent{
			EventBase: timing.NewEventBase(evt.Time()+evt.followUp, h),
			name:      evt.name + "-followup",
		})
	}

	return h.err
}

func (h *recordingHandler) at(t time.Duration, name string) namedEvent {
	return namedEvent{EventBase: timing.NewEventBase(t, h), name: name}
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *timing.SerialEngine
		handler  *recordingHandler
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = timing.NewSerialEngine()
		handler = &recordingHandler{engine: engine}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run events in time order", func() {
		engine.Schedule(handler.at(3*time.Second, "c"))
		engine.Schedule(handler.at(1*time.Second, "a"))
		engine.Schedule(handler.at(2*time.Second, "b"))

		Expect(engine.Run()).To(Succeed())
		Expect(handler.seen).To(Equal([]string{"a", "b", "c"}))
		Expect(engine.Now()).To(Equal(3 * time.Second))
		Expect(engine.Pending()).To(BeZero())
	})

	It("should run same-time events in scheduling order", func() {
		for _, name := range []string{"first", "second", "third", "fourth"} {
			engine.Schedule(handler.at(time.Second, name))
		}

		Expect(engine.Run()).To(Succeed())
		Expect(handler.seen).To(Equal([]string{"first", "second", "third", "fourth"}))
	})

	It("should run events scheduled by handlers", func() {
		evt := handler.at(time.Second, "a")
		evt.followUp = 500 * time.Millisecond
		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		Expect(handler.seen).To(Equal([]string{"a", "a-followup"}))
		Expect(engine.Now()).To(Equal(1500 * time.Millisecond))
	})

	It("should stop at the limit when running until a time", func() {
		engine.Schedule(handler.at(800*time.Millisecond, "a"))
		engine.Schedule(handler.at(1800*time.Millisecond, "b"))

		Expect(engine.RunUntil(time.Second)).To(Succeed())
		Expect(handler.seen).To(Equal([]string{"a"}))
		Expect(engine.Now()).To(Equal(time.Second))
		Expect(engine.Pending()).To(Equal(1))

		Expect(engine.Advance(800 * time.Millisecond)).To(Succeed())
		Expect(handler.seen).To(Equal([]string{"a", "b"}))
		Expect(engine.Now()).To(Equal(1800 * time.Millisecond))
	})

	It("should include events exactly at the limit", func() {
		engine.Schedule(handler.at(time.Second, "a"))

		Expect(engine.Advance(time.Second)).To(Succeed())
		Expect(handler.seen).To(Equal([]string{"a"}))
	})

	It("should cancel only the events of one handler", func() {
		other := &recordingHandler{engine: engine}
		engine.Schedule(handler.at(time.Second, "a"))
		engine.Schedule(other.at(time.Second, "other"))
		engine.Schedule(handler.at(2*time.Second, "b"))

		Expect(engine.Cancel(handler)).To(Equal(2))
		Expect(engine.Pending()).To(Equal(1))

		Expect(engine.Run()).To(Succeed())
		Expect(handler.seen).To(BeEmpty())
		Expect(other.seen).To(Equal([]string{"other"}))
	})

	It("should not cancel function handlers", func() {
		calls := 0
		fn := timing.HandlerFunc(func(e timing.Event) error {
			calls++
			return nil
		})
		engine.Schedule(timing.NewEventBase(time.Second, fn))

		Expect(engine.Cancel(fn)).To(BeZero())
		Expect(engine.Run()).To(Succeed())
		Expect(calls).To(Equal(1))
	})

	It("should panic when scheduling in the past", func() {
		engine.Schedule(handler.at(time.Second, "a"))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(handler.at(500*time.Millisecond, "late"))
		}).To(Panic())
	})

	It("should keep running and join handler errors", func() {
		handler.err = errors.New("handler failed")
		engine.Schedule(handler.at(time.Second, "a"))
		engine.Schedule(handler.at(2*time.Second, "b"))

		err := engine.Run()
		Expect(err).To(MatchError(ContainSubstring("handler failed")))
		Expect(handler.seen).To(Equal([]string{"a", "b"}))
	})

	It("should invoke hooks around every event", func() {
		hook := mock_timing.NewMockHook(mockCtrl)
		engine.AcceptHook(hook)
		Expect(engine.NumHooks()).To(Equal(1))

		evt := handler.at(time.Second, "a")
		engine.Schedule(evt)

		gomock.InOrder(
			hook.EXPECT().Func(timing.HookCtx{
				Domain: engine,
				Now:    time.Second,
				Pos:    timing.HookPosBeforeEvent,
				Item:   evt,
			}),
			hook.EXPECT().Func(timing.HookCtx{
				Domain: engine,
				Now:    time.Second,
				Pos:    timing.HookPosAfterEvent,
				Item:   evt,
			}),
		)

		Expect(engine.Run()).To(Succeed())
	})

	It("should dispatch events to mocked handlers", func() {
		mockHandler := mock_timing.NewMockHandler(mockCtrl)
		evt := timing.NewEventBase(time.Second, mockHandler)
		mockHandler.EXPECT().Handle(evt).Return(nil)

		engine.Schedule(evt)
		Expect(engine.Run()).To(Succeed())
	})
})
