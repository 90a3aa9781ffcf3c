package testutils

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nats-io/nats.go/jetstream"
)

// ResetJetStreamState purges every message from the given streams, keeping consumers.
func (env *TestEnvironment) ResetJetStreamState(ctx context.Context, streamNames ...string) error {
	if env.JetStream == nil {
		return fmt.Errorf("JetStream context is nil")
	}

	for _, streamName := range streamNames {
		stream, err := env.JetStream.Stream(ctx, streamName)
		if err != nil {
			if errors.Is(err, jetstream.ErrStreamNotFound) {
				continue
			}
			log.Printf("Warning: failed to access stream %s: %v", streamName, err)
			continue
		}

		if err := stream.Purge(ctx); err != nil {
			log.Printf("Warning: failed to purge stream %s: %v", streamName, err)
		}
	}

	return nil
}

// StreamMessageCount returns the number of messages stored in a stream.
func (env *TestEnvironment) StreamMessageCount(ctx context.Context, streamName string) (uint64, error) {
	stream, err := env.JetStream.Stream(ctx, streamName)
	if err != nil {
		return 0, err
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.State.Msgs, nil
}
