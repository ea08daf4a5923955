package services

import (
	"context"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/infrastructure/buffer"
	"github.com/dhanadurga/backend/usecase"
)

// BufferBridge adapts the buffer processor to the usecase.OperationBuffer
// port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) Buffer(ctx context.Context, m usecase.BufferedMutation) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	item := buffer.Item{
		UserID:    m.UserID,
		TargetID:  m.ID,
		Partition: m.Partition,
		Operation: m.Operation,
		Data:      m.Payload,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
