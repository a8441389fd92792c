package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// runExternal implements the generic external-command path spec §1 marks
// as out of scope for the scheduler core: fork+exec, `a | b | c` pipelines,
// and single-step `<`/`>` redirection. It is orthogonal POSIX plumbing that
// never touches the job table — supplemented per SPEC_FULL.md §4 from
// original_source/group-77/simple-shell.c's executeCommand/
// handlePipedCommands/handleInputOutputRedirection, reimplemented on top of
// os/exec instead of raw fork/pipe/dup2.
func (s *Shell) runExternal(line string, out io.Writer) {
	background := false
	trimmed := line
	if strings.HasSuffix(trimmed, "&") {
		background = true
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "&"))
	}

	switch {
	case strings.Contains(trimmed, "|"):
		s.runPipeline(trimmed, out)
	case strings.ContainsAny(trimmed, "<>"):
		s.runRedirected(trimmed, out)
	default:
		s.runSimple(trimmed, background, out)
	}
}

func (s *Shell) runSimple(line string, background bool, out io.Writer) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(out, "SimpleShell: %v\n", err)
		return
	}
	s.history.Record(line, cmd.Process.Pid, background)

	if background {
		fmt.Fprintf(out, "[%d] %s\n", cmd.Process.Pid, fields[0])
		go func() {
			cmd.Wait()
			s.history.MarkFinished(cmd.Process.Pid)
		}()
		return
	}
	cmd.Wait()
	s.history.MarkFinished(cmd.Process.Pid)
}

// runPipeline wires `a | b | c` using Go's pipe plumbing between
// exec.Cmds, equivalent to the original's chained dup2(pipefd) dance.
func (s *Shell) runPipeline(line string, out io.Writer) {
	stages := strings.Split(line, "|")
	cmds := make([]*exec.Cmd, 0, len(stages))
	for _, stage := range stages {
		fields := strings.Fields(strings.TrimSpace(stage))
		if len(fields) == 0 {
			fmt.Fprintln(out, "SimpleShell: empty pipeline stage")
			return
		}
		cmds = append(cmds, exec.Command(fields[0], fields[1:]...))
	}

	for i := 0; i < len(cmds)-1; i++ {
		pipe, err := cmds[i].StdoutPipe()
		if err != nil {
			fmt.Fprintf(out, "SimpleShell: %v\n", err)
			return
		}
		cmds[i+1].Stdin = pipe
	}
	cmds[0].Stdin = os.Stdin
	cmds[len(cmds)-1].Stdout = out
	for _, c := range cmds {
		c.Stderr = out
	}

	for _, c := range cmds {
		if err := c.Start(); err != nil {
			fmt.Fprintf(out, "SimpleShell: %v\n", err)
			return
		}
	}
	s.history.Record(line, cmds[len(cmds)-1].Process.Pid, false)
	for _, c := range cmds {
		c.Wait()
	}
	s.history.MarkFinished(cmds[len(cmds)-1].Process.Pid)
}

// runRedirected implements single-step `<`/`>` redirection.
func (s *Shell) runRedirected(line string, out io.Writer) {
	var direction byte
	var splitAt int
	if idx := strings.IndexByte(line, '<'); idx >= 0 {
		direction, splitAt = '<', idx
	}
	if idx := strings.IndexByte(line, '>'); idx >= 0 && (direction == 0 || idx < splitAt) {
		direction, splitAt = '>', idx
	}

	command := strings.TrimSpace(line[:splitAt])
	filename := strings.TrimSpace(line[splitAt+1:])
	fields := strings.Fields(command)
	if len(fields) == 0 || filename == "" {
		fmt.Fprintln(out, "SimpleShell: malformed redirection")
		return
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stderr = out

	if direction == '<' {
		f, err := os.Open(filename)
		if err != nil {
			fmt.Fprintf(out, "SimpleShell: %v\n", err)
			return
		}
		defer f.Close()
		cmd.Stdin = f
		cmd.Stdout = out
	} else {
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			fmt.Fprintf(out, "SimpleShell: %v\n", err)
			return
		}
		defer f.Close()
		cmd.Stdin = os.Stdin
		cmd.Stdout = f
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(out, "SimpleShell: %v\n", err)
		return
	}
	s.history.Record(line, cmd.Process.Pid, false)
	cmd.Wait()
	s.history.MarkFinished(cmd.Process.Pid)
}
