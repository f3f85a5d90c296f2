// Package mqttbridge mirrors the preamp status to an MQTT broker and accepts commands from it.
package mqttbridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/predicweb/internal/poll"
	"github.com/rbright/predicweb/internal/status"
)

// Gateway is the subset of the gateway the bridge drives.
type Gateway interface {
	Dispatch(ctx context.Context, command string) (string, error)
	Snapshot(ctx context.Context) (status.Snapshot, error)
}

// Reply is published to <prefix>/reply for every received command.
type Reply struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Reply   string `json:"reply,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Options configures a Bridge.
type Options struct {
	TopicPrefix string
	Interval    time.Duration
	Logger      *slog.Logger
	// OnPoll is called after every status fetch.
	OnPoll func(err error)
}

// Bridge publishes status changes and relays commands.
type Bridge struct {
	transport Transport
	gateway   Gateway
	prefix    string
	interval  time.Duration
	logger    *slog.Logger
	onPoll    func(err error)

	mu   sync.Mutex
	last *status.Snapshot
}

// New builds a bridge over an established transport.
func New(transport Transport, gateway Gateway, opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	prefix := strings.TrimRight(strings.TrimSpace(opts.TopicPrefix), "/")
	return &Bridge{
		transport: transport,
		gateway:   gateway,
		prefix:    prefix,
		interval:  opts.Interval,
		logger:    logger,
		onPoll:    opts.OnPoll,
	}
}

// StatusTopic carries the retained snapshot JSON.
func (b *Bridge) StatusTopic() string { return b.prefix + "/status" }

// CommandTopic is subscribed for raw command payloads.
func (b *Bridge) CommandTopic() string { return b.prefix + "/command" }

// ReplyTopic receives one Reply per handled command.
func (b *Bridge) ReplyTopic() string { return b.prefix + "/reply" }

// Run subscribes to the command topic and publishes status until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	err := b.transport.Subscribe(b.CommandTopic(), func(payload []byte) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.HandleCommand(ctx, string(payload))
		}()
	})
	if err != nil {
		b.transport.Close()
		return err
	}
	b.logger.Info("mqtt bridge started", "status_topic", b.StatusTopic(), "command_topic", b.CommandTopic())

	poll.Run(ctx, b.interval, b.PublishStatus)
	b.transport.Close()
	wg.Wait()
	return nil
}

// PublishStatus fetches one snapshot and publishes it when it differs from the last one sent.
func (b *Bridge) PublishStatus(ctx context.Context) {
	snap, err := b.gateway.Snapshot(ctx)
	if b.onPoll != nil {
		b.onPoll(err)
	}
	if err != nil {
		b.logger.Debug("mqtt status poll failed", "error", err.Error())
		return
	}

	b.mu.Lock()
	unchanged := b.last != nil && b.last.Equal(snap)
	b.mu.Unlock()
	if unchanged {
		return
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		b.logger.Error("encode status", "error", err.Error())
		return
	}
	if err := b.transport.Publish(b.StatusTopic(), payload, true); err != nil {
		b.logger.Warn("mqtt publish failed", "topic", b.StatusTopic(), "error", err.Error())
		return
	}

	b.mu.Lock()
	b.last = &snap
	b.mu.Unlock()
}

// HandleCommand dispatches one command payload and publishes the outcome.
func (b *Bridge) HandleCommand(ctx context.Context, payload string) {
	command := strings.TrimSpace(payload)
	if command == "" {
		return
	}

	reply := Reply{Command: command}
	out, err := b.gateway.Dispatch(ctx, command)
	if err != nil {
		reply.Error = err.Error()
	} else {
		reply.OK = true
		reply.Reply = out
	}
	b.logger.Info("mqtt command", "command", command, "ok", reply.OK)

	data, err := json.Marshal(reply)
	if err != nil {
		b.logger.Error("encode reply", "error", err.Error())
		return
	}
	if err := b.transport.Publish(b.ReplyTopic(), data, false); err != nil {
		b.logger.Warn("mqtt publish failed", "topic", b.ReplyTopic(), "error", err.Error())
	}
}
