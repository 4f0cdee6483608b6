// Package shell provides the interactive REPL for the primary agent.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/hupe1980/copilotmesh"
	"github.com/hupe1980/copilotmesh/history"
)

// ErrQuit is returned by Handle when the session should end.
var ErrQuit = errors.New("quit")

// commands is the static list of shell commands.
var commands = []string{
	"/enable_planning_mode",
	"/export_dump",
	"/dump_full_messages",
	"/set_interactions",
	"/plan",
	"/message",
	"/help",
	"/quit",
}

// Config holds shell configuration.
type Config struct {
	HistoryFile string
	Prompt      string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

// Shell is the interactive command-line interface.
type Shell struct {
	agent *copilotmesh.Agent
	cfg   Config
	out   io.Writer
}

// New creates a shell driving agent.
func New(agent *copilotmesh.Agent, cfg Config) *Shell {
	if cfg.Prompt == "" {
		cfg.Prompt = "USER: "
	}
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &Shell{agent: agent, cfg: cfg, out: out}
}

// Run starts the interactive loop. It returns nil on /quit, exit or EOF.
func (s *Shell) Run(ctx context.Context) error {
	items := make([]readline.PrefixCompleterInterface, len(commands))
	for i, c := range commands {
		items[i] = readline.PcItem(c)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.cfg.Prompt,
		HistoryFile:     s.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    readline.NewPrefixCompleter(items...),
		Stdin:           s.cfg.Stdin,
		Stdout:          s.cfg.Stdout,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s.printf("Act as an AiAgent\n")
	s.printf("Loaded agent name: %s\n", s.agent.Name())
	s.printf("Type /help for commands.\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := s.Handle(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			s.printf("Error: %v\n", err)
		}
	}
}

// Handle executes one input line: a command or a message for the agent.
// It returns ErrQuit when the session should end.
func (s *Shell) Handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "/") {
		return s.handleCommand(ctx, line)
	}

	resp, err := s.agent.ProcessInput(ctx, line)
	var ruleErr *copilotmesh.RuleError
	switch {
	case errors.As(err, &ruleErr):
		s.reply(copilotmesh.Rejection)
	case err != nil:
		return err
	default:
		s.reply(resp)
	}

	if strings.EqualFold(line, "exit") {
		s.reply("Goodbye!")
		return ErrQuit
	}

	return nil
}

func (s *Shell) handleCommand(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit", "/q":
		s.reply("Goodbye!")
		return ErrQuit

	case "/help", "/h":
		s.reply(s.agent.Help())

	case "/enable_planning_mode":
		s.agent.EnablePlanningMode()
		s.reply("Planning mode enabled!")

	case "/set_interactions":
		n, err := strconv.Atoi(arg)
		if err != nil {
			s.reply("Invalid input. Please provide a number after /set_interactions.")
			return nil
		}
		if err := s.agent.SetInteractions(n); err != nil {
			s.reply(fmt.Sprintf("Invalid input. %v.", err))
			return nil
		}
		s.reply(fmt.Sprintf("Minimum interactions set to %d!", n))

	case "/export_dump":
		data, err := s.agent.ContextDump()
		if err != nil {
			return err
		}
		return s.export(data, arg, "Context")

	case "/dump_full_messages":
		data, err := s.agent.DumpFullMessages()
		if err != nil {
			return err
		}
		return s.export(data, arg, "Full messages")

	case "/plan":
		plan, err := s.agent.Plan(ctx, arg)
		if err != nil {
			return err
		}
		s.reply(plan.String())

	case "/message":
		i, err := strconv.Atoi(arg)
		if err != nil {
			s.reply("Invalid input. Please provide a message index after /message.")
			return nil
		}
		msg, err := s.agent.FullMessage(i)
		if errors.Is(err, history.ErrIndexOutOfRange) {
			s.reply("Message index out of range.")
			return nil
		}
		if err != nil {
			return err
		}
		s.reply(msg)

	default:
		s.printf("Unknown command: %s\n", cmd)
	}

	return nil
}

// export prints data, or writes it to path when one is given.
func (s *Shell) export(data []byte, path, what string) error {
	if path == "" {
		s.printf("%s\n", data)
		return nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("export %s: %w", strings.ToLower(what), err)
	}
	s.reply(fmt.Sprintf("%s exported to '%s'.", what, path))
	return nil
}

func (s *Shell) reply(text string) { s.printf("AGENT: %s\n", text) }

func (s *Shell) printf(format string, args ...any) { _, _ = fmt.Fprintf(s.out, format, args...) }
