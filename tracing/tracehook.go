package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/mculink/comm"
)

// NamedHookable represents something that both has a name and can be hooked.
type NamedHookable interface {
	comm.Named
	comm.Hookable
	InvokeHook(comm.HookCtx)
}

// CollectTrace lets the tracer collect transfers from a domain, typically a
// protocol.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that translates hook invocations into transfers
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx comm.HookCtx) {
	switch ctx.Pos {
	case comm.HookPosMsgSend:
		h.t.RecordSend(transferFromCtx(ctx, KindSend))
	case comm.HookPosMsgDropped:
		h.t.RecordDrop(transferFromCtx(ctx, KindDrop))
	case comm.HookPosMsgRecvd, comm.HookPosMsgCorrupted:
		h.t.RecordReceive(transferFromCtx(ctx, KindReceive))
	}
}

func transferFromCtx(ctx comm.HookCtx, kind string) Transfer {
	msg := ctx.Item.(comm.Message)

	location := ""
	if named, ok := ctx.Domain.(comm.Named); ok {
		location = named.Name()
	}

	return Transfer{
		ID:         comm.GetIDGenerator().Generate(),
		Kind:       kind,
		MsgID:      msg.ID,
		PayloadLen: len(msg.Payload),
		Checksum:   msg.Checksum,
		Valid:      msg.Verify(),
		Location:   location,
	}
}
