// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package match

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gomori.dev/x/judge/pkg/eve/protocol"
)

// BotConfig describes how to start a bot.
type BotConfig struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	Cmd  string `yaml:"cmd" json:"cmd" mapstructure:"cmd"`
	Arg  string `yaml:"arg" json:"arg" mapstructure:"arg"`

	// Args are passed to the bot as they are, before the fields of Arg.
	Args []string `yaml:"args" json:"args" mapstructure:"args"`

	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`

	// Stderr is where the bot's standard error goes: discarded if empty,
	// the judge's own standard error if "-", and appended to the named
	// file otherwise.
	Stderr string `yaml:"stderr" json:"stderr" mapstructure:"stderr"`
}

// argv returns the arguments of the bot's command.
func (config BotConfig) argv() []string {
	return append(append([]string{}, config.Args...), strings.Fields(config.Arg)...)
}

var (
	ErrTimeout       = errors.New("bot: read i/o timeout")
	ErrProcessExited = errors.New("bot: process exited")
	ErrBrokenPipe    = errors.New("bot: broken pipe")
)

// TerminateGrace is how long a bot gets to exit on its own after it has
// been told goodbye, before it is killed.
var TerminateGrace = 500 * time.Millisecond

// Bot is a handle to a running bot process. It is owned by a single match
// and must not be shared.
type Bot struct {
	config BotConfig

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *os.File

	writer *bufio.Writer
	reader *bufio.Reader

	lines  chan string
	exited chan struct{} // closed when the bot's output ends
	quit   chan struct{}

	err  error
	once sync.Once
}

var _ Player = (*Bot)(nil)

// StartBot spawns the bot's process.
func StartBot(config BotConfig) (*Bot, error) {
	if config.Cmd == "" {
		return nil, fmt.Errorf("start bot %s: empty command", config.Name)
	}

	bot := Bot{
		config: config,
		cmd:    exec.Command(config.Cmd, config.argv()...),
		lines:  make(chan string),
		exited: make(chan struct{}),
		quit:   make(chan struct{}),
	}

	bot.cmd.Dir = config.Dir

	switch config.Stderr {
	case "":
	case "-":
		bot.cmd.Stderr = os.Stderr
	default:
		file, err := os.OpenFile(config.Stderr, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("start bot %s: %w", config.Name, err)
		}

		bot.stderr = file
		bot.cmd.Stderr = file
	}

	stdin, err := bot.cmd.StdinPipe()
	if err != nil {
		bot.closeStderr()
		return nil, err
	}

	stdout, err := bot.cmd.StdoutPipe()
	if err != nil {
		bot.closeStderr()
		return nil, err
	}

	bot.stdin = stdin
	bot.writer = bufio.NewWriter(stdin)
	bot.reader = bufio.NewReader(stdout)

	if err := bot.cmd.Start(); err != nil {
		bot.closeStderr()
		return nil, fmt.Errorf("start bot %s: %w", config.Name, err)
	}

	logrus.Debugf("started bot %s (pid %d)", config.Name, bot.cmd.Process.Pid)

	go bot.read()
	return &bot, nil
}

func (bot *Bot) read() {
	defer close(bot.exited)

	for {
		line, err := bot.reader.ReadString('\n')
		if err != nil {
			bot.err = err
			return
		}

		select {
		case bot.lines <- strings.TrimRight(line, "\r\n"):
		case <-bot.quit:
			return
		}
	}
}

// Name returns the name the bot was configured with.
func (bot *Bot) Name() string {
	return bot.config.Name
}

// Send writes the request to the bot as a single line, and returns the
// line without its terminator.
func (bot *Bot) Send(request protocol.Request) (string, error) {
	line, err := protocol.Encode(request)
	if err != nil {
		return "", err
	}

	if _, err := bot.writer.WriteString(line + "\n"); err != nil {
		return line, fmt.Errorf("%w: %v", ErrBrokenPipe, err)
	}

	if err := bot.writer.Flush(); err != nil {
		return line, fmt.Errorf("%w: %v", ErrBrokenPipe, err)
	}

	return line, nil
}

// Receive waits for the next line from the bot. It returns ErrTimeout if
// the bot is still running when the timeout elapses, and ErrProcessExited
// if its output has ended. A timeout of zero waits forever.
func (bot *Bot) Receive(timeout time.Duration) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case line := <-bot.lines:
		return line, nil

	case <-bot.exited:
		return "", bot.exitError()

	case <-expired:
		// The process may have died just as the timer fired.
		select {
		case <-bot.exited:
			return "", bot.exitError()
		default:
			return "", ErrTimeout
		}
	}
}

func (bot *Bot) exitError() error {
	if bot.err != nil && bot.err != io.EOF {
		return fmt.Errorf("%w: %v", ErrProcessExited, bot.err)
	}

	return ErrProcessExited
}

// Terminate says goodbye to the bot, closes its input and waits a short
// while for it to exit before killing it. It is safe to call Terminate
// more than once.
func (bot *Bot) Terminate() error {
	var err error

	bot.once.Do(func() {
		// Best effort: the bot may already be gone.
		if line, encErr := protocol.Encode(protocol.Bye{}); encErr == nil {
			_, _ = bot.writer.WriteString(line + "\n")
			_ = bot.writer.Flush()
		}

		_ = bot.stdin.Close()
		close(bot.quit)

		select {
		case <-bot.exited:
		case <-time.After(TerminateGrace):
		}

		if killErr := bot.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = killErr
		}

		if waitErr := bot.cmd.Wait(); waitErr != nil {
			logrus.Debugf("bot %s: %v", bot.config.Name, waitErr)
		}

		bot.closeStderr()
	})

	return err
}

func (bot *Bot) closeStderr() {
	if bot.stderr != nil {
		_ = bot.stderr.Close()
	}
}
