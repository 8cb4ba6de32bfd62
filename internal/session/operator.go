package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Operator is a cooperative blocking checkpoint: when the aggregator
// presents a challenge only a human can clear (captcha, login), the
// session suspends on Await and resumes once the operator signals.
type Operator interface {
	Await(ctx context.Context, prompt string) error
}

// ConsoleOperator blocks until a line is read from In, typically stdin.
type ConsoleOperator struct {
	In  io.Reader
	Out io.Writer
}

// Await prints the prompt and waits for a line of input. The wait
// itself has no timeout; only context cancellation interrupts it.
func (o ConsoleOperator) Await(ctx context.Context, prompt string) error {
	fmt.Fprintf(o.Out, "%s (press Enter to continue) ", prompt)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(o.In).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read operator input: %w", err)
		}
		return nil
	}
}
