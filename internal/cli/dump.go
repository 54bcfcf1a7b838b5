package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Evge14n/tryzub/internal/bytecode"
	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/pipeline"
	"github.com/Evge14n/tryzub/internal/tokens"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			if err := newPipeline(cmd).Lex(u); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTokens(u.Tokens))
			return emitUnit(cmd, u)
		},
	}
}

// renderTokens lays toks out one per row with their positions.
func renderTokens(toks []tokens.Token) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Line", "Col", "Kind", "Value"})
	for i, tok := range toks {
		value := ""
		if tok.Value != string(tok.Kind) {
			value = strconv.Quote(tok.Value)
		}
		t.AppendRow(table.Row{i, tok.Start.Line, tok.Start.Column, tok.Kind, value})
	}
	return t.Render()
}

func newIRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ir <file>",
		Short: "Print the optimized IR of a program",
		Long: `ir prints the SSA form the JIT and native builds start from, after
constant folding and dead code elimination (see --opt-level).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, u, err := lower(cmd, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), ir.FormatModule(mod))
			return emitUnit(cmd, u)
		},
	}
}

func lower(cmd *cobra.Command, file string) (*ir.Module, *pipeline.Unit, error) {
	u, err := pipeline.Load(file)
	if err != nil {
		return nil, nil, err
	}
	p := newPipeline(cmd)
	if err := p.Front(u); err != nil {
		return nil, nil, failUnit(cmd, u, err)
	}
	if err := p.Lower(u); err != nil {
		pipeline.ReportUnsupported(u, err)
		return nil, nil, failUnit(cmd, u, err)
	}
	return u.IR, u, nil
}

func newBytecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bytecode <file>",
		Short: "Disassemble the VM bytecode of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := pipeline.Load(args[0])
			if err != nil {
				return err
			}
			p := newPipeline(cmd)
			if err := p.Front(u); err != nil {
				return failUnit(cmd, u, err)
			}
			mod, err := p.Bytecode(u)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), bytecode.Disassemble(mod))
			return emitUnit(cmd, u)
		},
	}
}

// failUnit prints u's diagnostics when a stage failed with them, or returns
// err as is.
func failUnit(cmd *cobra.Command, u *pipeline.Unit, err error) error {
	if !u.HasErrors() {
		return err
	}
	return emitUnit(cmd, u)
}
