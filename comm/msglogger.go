package comm

import "log"

// A LogHook is a hook that is responsible for recording channel activity.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// ChannelMsgLogger is a hook for logging messages as they move through a
// protocol or a channel. The caller supplies the logger; the core itself
// never prints.
type ChannelMsgLogger struct {
	LogHookBase
}

// NewChannelMsgLogger returns a new ChannelMsgLogger which will write into
// the given logger.
func NewChannelMsgLogger(logger *log.Logger) *ChannelMsgLogger {
	h := new(ChannelMsgLogger)
	h.Logger = logger
	return h
}

// Func writes the message information into the logger.
func (h *ChannelMsgLogger) Func(ctx HookCtx) {
	msg, ok := ctx.Item.(Message)
	if !ok {
		return
	}

	domain, ok := ctx.Domain.(Named)
	if !ok {
		return
	}

	h.Printf("%s,%s,%d,%d,0x%02x\n",
		domain.Name(), ctx.Pos.Name,
		msg.ID, len(msg.Payload), msg.Checksum)
}
