package agent

import (
	"context"
	"testing"
)

func TestNewLLMClient(t *testing.T) {
	c := NewLLMClient("test-key", "http://localhost:11434/v1", "llama3")
	if c == nil {
		t.Fatal("nil client")
	}
	if c.model != "llama3" {
		t.Errorf("model = %q, want %q", c.model, "llama3")
	}
}

func TestCompleteReturnsErrorOnCancelledContext(t *testing.T) {
	c := NewLLMClient("test-key", "http://localhost:0", "llama3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Complete(ctx, "recommend a mouse"); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
