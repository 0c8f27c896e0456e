package comm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HookableBase", func() {
	It("should invoke all registered hooks in order", func() {
		domain := NewHookableBase()
		h1 := &hookRecorder{}
		h2 := &hookRecorder{}

		domain.AcceptHook(h1)
		domain.AcceptHook(h2)

		Expect(domain.NumHooks()).To(Equal(2))
		Expect(domain.Hooks()).To(HaveLen(2))

		ctx := HookCtx{Pos: HookPosChannelPush, Item: 42}
		domain.InvokeHook(ctx)

		Expect(h1.ctxs).To(HaveLen(1))
		Expect(h2.ctxs).To(HaveLen(1))
		Expect(h1.ctxs[0].Item).To(Equal(42))
	})
})

var _ = Describe("NameMustBeValid", func() {
	It("should accept hierarchical CamelCase names", func() {
		Expect(func() { NameMustBeValid("Link") }).ToNot(Panic())
		Expect(func() { NameMustBeValid("Link.Channel") }).ToNot(Panic())
	})

	It("should reject malformed names", func() {
		Expect(func() { NameMustBeValid("link") }).To(Panic())
		Expect(func() { NameMustBeValid("Link.") }).To(Panic())
		Expect(func() { NameMustBeValid("Link..Channel") }).To(Panic())
		Expect(func() { NameMustBeValid("Link_1") }).To(Panic())
	})
})
