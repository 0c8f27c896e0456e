package comm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Message", func() {
	It("should fold an empty payload to zero", func() {
		Expect(ChecksumOf(nil)).To(Equal(byte(0)))
		Expect(ChecksumOf([]byte{})).To(Equal(byte(0)))
	})

	It("should compute the checksum independent of byte order", func() {
		payload := []byte{0x01, 0x02, 0x04, 0x08, 0x10}
		want := ChecksumOf(payload)

		permutations := [][]byte{
			{0x10, 0x08, 0x04, 0x02, 0x01},
			{0x02, 0x10, 0x01, 0x08, 0x04},
			{0x04, 0x01, 0x10, 0x02, 0x08},
		}
		for _, p := range permutations {
			Expect(ChecksumOf(p)).To(Equal(want))
		}
	})

	It("should verify right after construction", func() {
		msg := NewMessage(1, []byte{0x01, 0x02, 0x03})

		Expect(msg.ID).To(Equal(uint16(1)))
		Expect(msg.Checksum).To(Equal(byte(0x01 ^ 0x02 ^ 0x03)))
		Expect(msg.Verify()).To(BeTrue())
	})

	It("should verify an empty payload", func() {
		msg := NewMessage(2, nil)

		Expect(msg.Checksum).To(Equal(byte(0)))
		Expect(msg.Verify()).To(BeTrue())
	})

	It("should detect a single corrupted byte", func() {
		msg := NewMessage(3, []byte{0x01, 0x02, 0x03})

		msg.Payload[1] ^= 0x40

		Expect(msg.Verify()).To(BeFalse())
	})

	It("should not detect an XOR-cancelling pair of corruptions", func() {
		// Two identical flips cancel in the fold. This blindness is part of
		// the scheme.
		msg := NewMessage(4, []byte{0xAA, 0xAA, 0x01})

		msg.Payload[0] = 0xBB
		msg.Payload[1] = 0xBB

		Expect(msg.Verify()).To(BeTrue())
	})

	It("should not alias the caller's payload", func() {
		payload := []byte{0x01, 0x02}
		msg := NewMessage(5, payload)

		payload[0] = 0xFF

		Expect(msg.Payload).To(Equal([]byte{0x01, 0x02}))
		Expect(msg.Verify()).To(BeTrue())
	})

	It("should clone deeply", func() {
		msg := NewMessage(6, []byte{0x01, 0x02})
		clone := msg.Clone()

		clone.Payload[0] = 0xFF

		Expect(msg.Payload).To(Equal([]byte{0x01, 0x02}))
		Expect(clone.Verify()).To(BeFalse())
	})
})
