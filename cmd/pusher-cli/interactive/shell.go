// Package interactive provides the interactive command loop for
// pusher-cli.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/jesusruizlopez/pusher-java-client/pkg/channel"
	"github.com/jesusruizlopez/pusher-java-client/pkg/client"
	"github.com/jesusruizlopez/pusher-java-client/pkg/connection"
)

// Shell handles interactive mode for pusher-cli.
type Shell struct {
	client *client.Client
	rl     *readline.Instance

	// bindings tracks the listeners installed via the bind command so
	// unbind can remove the same instance. Keyed by "channel/event".
	bindings map[string]*printListener
}

// New creates a new interactive shell around the client.
func New(c *client.Client) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pusher> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Shell{
		client:   c,
		rl:       rl,
		bindings: make(map[string]*printListener),
	}
	c.SetConnectionListener(s)
	return s, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "connect", "c":
			s.cmdConnect(ctx)

		case "disconnect", "d":
			s.cmdDisconnect()

		case "subscribe", "sub", "s":
			s.cmdSubscribe(args)

		case "unsubscribe", "unsub":
			s.cmdUnsubscribe(args)

		case "bind", "b":
			s.cmdBind(args)

		case "unbind":
			s.cmdUnbind(args)

		case "channels", "ls":
			s.cmdChannels()

		case "state":
			s.cmdState(args)

		case "members", "m":
			s.cmdMembers(args)

		case "socket":
			s.cmdSocket()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Commands:
  Connection:
    connect            - Connect to the endpoint
    disconnect         - Close the connection
    socket             - Show the server-assigned socket ID

  Channels:
    subscribe <name>   - Subscribe to a channel
                         (private-* and presence-* use the configured authorizer)
    unsubscribe <name> - Unsubscribe from a channel
    channels           - List subscribed channels and their states
    state <name>       - Show a channel's state and continuity token
    members <name>     - List members of a presence channel

  Events:
    bind <name> <ev>   - Print events with the given name on a channel
    unbind <name> <ev> - Stop printing those events

  General:
    help               - Show this help
    quit               - Exit`)
}

func (s *Shell) cmdConnect(ctx context.Context) {
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.client.Connect(dialCtx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Connected, socket ID %s\n", s.client.Connection().SocketID())
}

func (s *Shell) cmdDisconnect() {
	if err := s.client.Disconnect(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Disconnect failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Disconnected")
}

func (s *Shell) cmdSubscribe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: subscribe <name>")
		return
	}
	name := args[0]

	var err error
	switch {
	case strings.HasPrefix(name, channel.PresencePrefix):
		var ch *channel.PresenceChannel
		ch, err = s.client.SubscribePresence(name)
		if err == nil {
			ch.SetChannelListener(&printListener{shell: s})
			ch.SetMemberListener(&printMemberListener{shell: s})
		}
	case strings.HasPrefix(name, channel.PrivatePrefix):
		var ch *channel.PrivateChannel
		ch, err = s.client.SubscribePrivate(name)
		if err == nil {
			ch.SetChannelListener(&printListener{shell: s})
		}
	default:
		var ch *channel.Channel
		ch, err = s.client.Subscribe(name)
		if err == nil {
			ch.SetChannelListener(&printListener{shell: s})
		}
	}

	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Subscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Subscribing to %s\n", name)
}

func (s *Shell) cmdUnsubscribe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: unsubscribe <name>")
		return
	}
	if err := s.client.Unsubscribe(args[0]); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Unsubscribe failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Unsubscribed from %s\n", args[0])
}

func (s *Shell) cmdBind(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: bind <channel> <event>")
		return
	}
	name, event := args[0], args[1]

	ch := s.client.Channel(name)
	if ch == nil {
		fmt.Fprintf(s.rl.Stdout(), "Not subscribed to %s\n", name)
		return
	}
	binder, ok := ch.(interface {
		Bind(event string, listener channel.EventListener) error
	})
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "Channel %s does not support binding\n", name)
		return
	}

	key := name + "/" + event
	if _, exists := s.bindings[key]; exists {
		fmt.Fprintf(s.rl.Stdout(), "Already bound to %s on %s\n", event, name)
		return
	}

	listener := &printListener{shell: s}
	if err := binder.Bind(event, listener); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Bind failed: %v\n", err)
		return
	}
	s.bindings[key] = listener
	fmt.Fprintf(s.rl.Stdout(), "Bound to %s on %s\n", event, name)
}

func (s *Shell) cmdUnbind(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: unbind <channel> <event>")
		return
	}
	name, event := args[0], args[1]

	key := name + "/" + event
	listener, exists := s.bindings[key]
	if !exists {
		fmt.Fprintf(s.rl.Stdout(), "No binding for %s on %s\n", event, name)
		return
	}

	ch := s.client.Channel(name)
	if ch != nil {
		unbinder, ok := ch.(interface {
			Unbind(event string, listener channel.EventListener) error
		})
		if ok {
			if err := unbinder.Unbind(event, listener); err != nil {
				fmt.Fprintf(s.rl.Stdout(), "Unbind failed: %v\n", err)
				return
			}
		}
	}
	delete(s.bindings, key)
	fmt.Fprintf(s.rl.Stdout(), "Unbound from %s on %s\n", event, name)
}

func (s *Shell) cmdChannels() {
	all := s.client.Channels()
	if len(all) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No subscribed channels")
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "\nSubscribed Channels (%d):\n", len(all))
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")
	for _, ch := range all {
		fmt.Fprintf(s.rl.Stdout(), "  %-32s %s\n", ch.Name(), ch.State())
	}
	fmt.Fprintln(s.rl.Stdout())
}

func (s *Shell) cmdState(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: state <channel>")
		return
	}
	ch := s.client.Channel(args[0])
	if ch == nil {
		fmt.Fprintf(s.rl.Stdout(), "Not subscribed to %s\n", args[0])
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "  Channel: %s\n", ch.Name())
	fmt.Fprintf(s.rl.Stdout(), "  State:   %s\n", ch.State())
	if tracker, ok := ch.(interface{ ResumeAfter() string }); ok {
		token := tracker.ResumeAfter()
		if token == "" {
			token = "(none)"
		}
		fmt.Fprintf(s.rl.Stdout(), "  Token:   %s\n", token)
	}
}

func (s *Shell) cmdMembers(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: members <channel>")
		return
	}
	ch := s.client.Channel(args[0])
	if ch == nil {
		fmt.Fprintf(s.rl.Stdout(), "Not subscribed to %s\n", args[0])
		return
	}

	presence, ok := ch.(*channel.PresenceChannel)
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "%s is not a presence channel\n", args[0])
		return
	}

	members := presence.Members()
	if len(members) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No members")
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "\nMembers (%d):\n", len(members))
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")
	for _, member := range members {
		if len(member.Info) > 0 {
			fmt.Fprintf(s.rl.Stdout(), "  %s %s\n", member.ID, string(member.Info))
		} else {
			fmt.Fprintf(s.rl.Stdout(), "  %s\n", member.ID)
		}
	}
	fmt.Fprintln(s.rl.Stdout())
}

func (s *Shell) cmdSocket() {
	conn := s.client.Connection()
	if conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not connected")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Socket ID: %s\n", conn.SocketID())
}

// OnStateChange implements connection.Listener.
func (s *Shell) OnStateChange(previous, current connection.State) {
	fmt.Fprintf(s.rl.Stdout(), "\n[%s] Connection: %s -> %s\n",
		time.Now().Format("15:04:05"), previous, current)
	s.rl.Refresh()
}

// OnError implements connection.Listener.
func (s *Shell) OnError(message string, code int, err error) {
	if code != 0 {
		fmt.Fprintf(s.rl.Stdout(), "\n[%s] Error %d: %s\n",
			time.Now().Format("15:04:05"), code, message)
	} else {
		fmt.Fprintf(s.rl.Stdout(), "\n[%s] Error: %s\n",
			time.Now().Format("15:04:05"), message)
	}
	s.rl.Refresh()
}

// printListener prints delivered events to the shell output.
type printListener struct {
	shell *Shell
}

func (l *printListener) OnEvent(channelName, event, data string) {
	fmt.Fprintf(l.shell.rl.Stdout(), "\n[%s] %s %s: %s\n",
		time.Now().Format("15:04:05"), channelName, event, data)
	l.shell.rl.Refresh()
}

func (l *printListener) OnSubscriptionSucceeded(channelName string) {
	fmt.Fprintf(l.shell.rl.Stdout(), "\n[%s] Subscribed to %s\n",
		time.Now().Format("15:04:05"), channelName)
	l.shell.rl.Refresh()
}

// printMemberListener prints presence membership changes.
type printMemberListener struct {
	shell *Shell
}

func (l *printMemberListener) OnMemberAdded(channelName string, member channel.Member) {
	fmt.Fprintf(l.shell.rl.Stdout(), "\n[%s] %s: member joined: %s\n",
		time.Now().Format("15:04:05"), channelName, member.ID)
	l.shell.rl.Refresh()
}

func (l *printMemberListener) OnMemberRemoved(channelName string, member channel.Member) {
	fmt.Fprintf(l.shell.rl.Stdout(), "\n[%s] %s: member left: %s\n",
		time.Now().Format("15:04:05"), channelName, member.ID)
	l.shell.rl.Refresh()
}
