package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Evge14n/tryzub/internal/compiler"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
)

const (
	replPrompt         = "тризуб> "
	replContinuePrompt = "   ...> "
	replFile           = "<repl>"
)

// declKeywords start a line that is kept as a top-level declaration.
var declKeywords = []string{"функція", "асинхронний", "структура", "реалізація", "змінна", "стала"}

func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `repl reads declarations and statements line by line.

Declarations (functions, structs, impls, globals) are kept for the rest of
the session. Any other input runs as the body of головна against fresh
globals; an expression has its value printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
	cmd.Flags().String("engine", "auto", "execution engine (auto|vm|jit)")
	return cmd
}

func runREPL(cmd *cobra.Command) error {
	historyFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		historyFile = filepath.Join(dir, "tryzub_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Тризуб %s. Type .help for commands, .quit to exit\n", Version)

	s := newSession(cmd)
	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		if buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
			if s.command(strings.TrimSpace(line)) {
				return nil
			}
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		if depth(buf.String()) > 0 {
			rl.SetPrompt(replContinuePrompt)
			continue
		}
		rl.SetPrompt(replPrompt)
		s.eval(cmd.Context(), buf.String())
		buf.Reset()
	}
}

func newCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".decls"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
	}
	for _, kw := range declKeywords {
		items = append(items, readline.PcItem(kw))
	}
	return readline.NewPrefixCompleter(items...)
}

// session holds the declarations entered so far.
type session struct {
	cmd   *cobra.Command
	decls []string
}

func newSession(cmd *cobra.Command) *session {
	return &session{cmd: cmd}
}

// command runs a dot command and reports whether the session should end.
func (s *session) command(line string) bool {
	out := s.cmd.OutOrStdout()
	switch strings.Fields(line)[0] {
	case ".quit", ".exit":
		return true
	case ".help":
		_, _ = fmt.Fprintln(out, `.decls   list the declarations kept so far
.reset   forget every declaration
.quit    leave the session`)
	case ".decls":
		for _, d := range s.decls {
			_, _ = fmt.Fprintln(out, d)
		}
	case ".reset":
		s.decls = nil
	default:
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "unknown command %s, try .help\n", line)
	}
	return false
}

// eval keeps a declaration after checking it, or runs a statement. An
// expression is tried first wrapped in друк so its value is shown.
func (s *session) eval(ctx context.Context, input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	if isDecl(input) {
		r := compiler.Check(ctx, s.options(s.program(input, "")))
		if r.Success {
			s.decls = append(s.decls, input)
			return
		}
		_ = report(s.cmd, r)
		return
	}

	printed := s.program("", "друк("+input+")")
	if compiler.Check(ctx, s.options(printed)).Success {
		_ = report(s.cmd, compiler.Run(ctx, s.options(printed)))
		return
	}
	_ = report(s.cmd, compiler.Run(ctx, s.options(s.program("", input))))
}

func (s *session) options(src string) compiler.Options {
	opts := compilerOptions(s.cmd, replFile)
	opts.Source = []byte(src)
	return opts
}

// program joins the kept declarations with decl and, when body is set, an
// entry function around it. The entry is async when body awaits.
func (s *session) program(decl, body string) string {
	var b strings.Builder
	for _, d := range s.decls {
		b.WriteString(d)
		b.WriteString("\n")
	}
	if decl != "" {
		b.WriteString(decl)
		b.WriteString("\n")
	}
	if body != "" {
		if strings.Contains(body, "чекати") {
			b.WriteString("асинхронний ")
		}
		fmt.Fprintf(&b, "функція %s() {\n%s\n}\n", typechecker.EntryName, body)
	}
	return b.String()
}

func isDecl(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	for _, kw := range declKeywords {
		if fields[0] == kw {
			return true
		}
	}
	return false
}

// depth is the count of unclosed braces, parentheses and brackets outside
// string literals and comments.
func depth(src string) int {
	n := 0
	inString, escaped := false, false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			}
		case '{', '(', '[':
			n++
		case '}', ')', ']':
			n--
		}
	}
	return n
}
