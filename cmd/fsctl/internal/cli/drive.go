package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"forkserver-go/internal/config"
	"forkserver-go/internal/forksrv"
)

var (
	driveInputs  []string
	driveTimeout int
	drivePreload string
	driveBatch   int
)

var driveCmd = &cobra.Command{
	Use:   "drive <host-binary> [args...]",
	Short: "Launch a host process under the preload module and drive its fork server",
	Long: `drive sets __SCM_TIMEOUT and __SCM_INPUT_<k> the way the preload module
expects, launches host with LD_PRELOAD pointed at the built shared
object, and exchanges one-byte commands for framed exit-code replies
over its stdin/stdout. With no --batch count it relays raw keypresses
from its own terminal (Ctrl-C to stop); with --batch N it drives N
scripted runs and exits, for load testing (spec.md §8 scenario 6).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDrive(GetContext(), args[0], args[1:])
	},
}

func init() {
	driveCmd.Flags().StringArrayVar(&driveInputs, "input", nil, "path to register as an input file (repeatable, at least one required)")
	driveCmd.Flags().IntVar(&driveTimeout, "timeout", 5, "per-invocation CPU-time limit in seconds")
	driveCmd.Flags().StringVar(&drivePreload, "preload", "", "path to the built preload shared object; sets LD_PRELOAD")
	driveCmd.Flags().IntVar(&driveBatch, "batch", 0, "drive the host this many times in a scripted loop, then exit")
	rootCmd.AddCommand(driveCmd)
}

func runDrive(ctx context.Context, bin string, args []string) error {
	if len(driveInputs) == 0 {
		return fmt.Errorf("drive: at least one --input is required")
	}

	env := os.Environ()
	env = append(env, fmt.Sprintf("%s=%d", config.TimeoutEnv, driveTimeout))
	for i, p := range driveInputs {
		env = append(env, fmt.Sprintf("%s%d=%s", config.InputEnvPrefix, i, p))
	}
	if drivePreload != "" {
		env = append(env, "LD_PRELOAD="+drivePreload)
	}

	host := exec.CommandContext(ctx, bin, args...)
	host.Env = env
	host.Stderr = os.Stderr

	stdin, err := host.StdinPipe()
	if err != nil {
		return fmt.Errorf("drive: stdin pipe: %w", err)
	}
	stdout, err := host.StdoutPipe()
	if err != nil {
		return fmt.Errorf("drive: stdout pipe: %w", err)
	}

	if err := host.Start(); err != nil {
		return fmt.Errorf("drive: start host: %w", err)
	}

	replies := make(chan string)
	go scanReplies(stdout, replies)

	initReply, ok := <-replies
	if !ok || initReply != "INIT" {
		host.Process.Kill()
		return fmt.Errorf("drive: expected INIT reply, got %q", initReply)
	}
	fmt.Fprintln(os.Stdout, "fork server ready")

	if driveBatch > 0 {
		return runBatch(host, stdin, replies, driveBatch)
	}
	return runInteractive(host, stdin, replies)
}

// runInteractive puts the controlling terminal into raw mode and
// relays every keypress as a one-byte fork-server command, printing
// each framed exit code as it comes back, in the style of
// container/exec.go's term.MakeRaw/term.Restore PTY handling.
func runInteractive(host *exec.Cmd, stdin io.WriteCloser, replies <-chan string) error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("drive: term.MakeRaw: %w", err)
		}
		defer term.Restore(fd, oldState)
	}

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n != 1 {
			break
		}
		if buf[0] == 0x03 { // Ctrl-C
			break
		}
		if _, err := stdin.Write(buf); err != nil {
			break
		}
		reply, ok := <-replies
		if !ok {
			break
		}
		fmt.Fprintf(os.Stdout, "\r\nexit code: %s\r\n", reply)
	}

	stdin.Close()
	return host.Wait()
}

// runBatch drives the host driveBatch times with no terminal
// involved, for scripted load testing.
func runBatch(host *exec.Cmd, stdin io.WriteCloser, replies <-chan string, n int) error {
	for i := 0; i < n; i++ {
		if _, err := stdin.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("drive: write command %d: %w", i, err)
		}
		reply, ok := <-replies
		if !ok {
			return fmt.Errorf("drive: host closed before reply %d", i)
		}
		fmt.Fprintf(os.Stdout, "run %d: exit code %s\n", i, reply)
	}

	stdin.Close()
	return host.Wait()
}

// scanReplies splits r into lines, forwarding anything framed with
// forksrv.ReplyMark to out (with the mark stripped) and passing
// everything else straight through to this process's own stdout.
func scanReplies(r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, forksrv.ReplyMark) {
			out <- strings.TrimPrefix(line, forksrv.ReplyMark)
			continue
		}
		fmt.Fprintln(os.Stdout, line)
	}
}
