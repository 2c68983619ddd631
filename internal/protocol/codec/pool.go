package codec

import (
	"bytes"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// pool 带类型的 sync.Pool，归还前由 reset 清理对象
type pool[T any] struct {
	p     sync.Pool
	reset func(T)
}

func newPool[T any](alloc func() T, reset func(T)) *pool[T] {
	return &pool[T]{
		p:     sync.Pool{New: func() any { return alloc() }},
		reset: reset,
	}
}

func (p *pool[T]) get() T { return p.p.Get().(T) }

func (p *pool[T]) put(v T) {
	p.reset(v)
	p.p.Put(v)
}

// 每帧消息都会经过编解码，复用对象以减少分配
var (
	messages = newPool(
		func() *protocol.Message { return &protocol.Message{} },
		func(m *protocol.Message) { m.Type, m.Payload = "", nil },
	)
	envelopes = newPool(
		func() *structpb.Struct { return &structpb.Struct{} },
		func(s *structpb.Struct) { s.Reset() },
	)
	buffers = newPool(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) { b.Reset() }, // 保留容量
	)
)

// GetMessage 从池中取出消息
func GetMessage() *protocol.Message { return messages.get() }

// PutMessage 归还 Decode 得到的消息，调用后不得再使用 msg
func PutMessage(msg *protocol.Message) {
	if msg != nil {
		messages.put(msg)
	}
}

func getEnvelope() *structpb.Struct { return envelopes.get() }

func putEnvelope(env *structpb.Struct) {
	if env != nil {
		envelopes.put(env)
	}
}

// GetBuffer 从池中取出缓冲区
func GetBuffer() *bytes.Buffer { return buffers.get() }

// PutBuffer 归还缓冲区
func PutBuffer(buf *bytes.Buffer) {
	if buf != nil {
		buffers.put(buf)
	}
}
