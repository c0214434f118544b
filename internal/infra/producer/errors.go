package producer

import (
	"errors"

	"github.com/segmentio/kafka-go"
)

var (
	ErrInvalidParameter = errors.New("invalid producer parameter")
	ErrProducerClosed   = errors.New("producer is closed, call Start() first")
	ErrBufferFull       = errors.New("producer buffer is full")
	ErrCloseTimeout     = errors.New("producer not drained within wait time, some messages are lost")
)

// isFatal reports whether retrying the write is pointless, e.g. missing topic
// or authorization failures reported by the broker.
func isFatal(err error) bool {
	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return !kerr.Temporary()
	}
	return false
}
