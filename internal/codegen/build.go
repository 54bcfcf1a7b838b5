// Package codegen drives the native back end: it writes the generated C to
// a scratch file and compiles it with the system C compiler.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	utilsfs "github.com/Evge14n/tryzub/internal/utils/fs"
)

// BuildOptions configures how to build the executable
type BuildOptions struct {
	Compiler   string   // C compiler (cc, gcc, clang)
	CFlags     []string // Compiler flags
	LinkLibs   []string // Libraries after the source file
	OutputPath string   // Output executable path
	// KeepC leaves the generated source next to the output as <output>.c.
	KeepC bool
}

// ToolchainError reports a failed compiler invocation with its output.
type ToolchainError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *ToolchainError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", filepath.Base(e.Tool), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ToolchainError) Unwrap() error { return e.Err }

// DefaultBuildOptions returns default build options
func DefaultBuildOptions() *BuildOptions {
	compiler := os.Getenv("TRYZUB_CC")
	if compiler == "" {
		compiler = os.Getenv("CC")
	}
	if compiler == "" {
		compiler = findCompiler()
	}

	cflags := []string{"-std=c99", "-O2", "-w"}
	if extra := strings.Fields(os.Getenv("TRYZUB_CFLAGS")); len(extra) > 0 {
		cflags = append(cflags, extra...)
	}

	linkLibs := []string{"-lm"}
	if runtime.GOOS == "windows" {
		linkLibs = nil
	}

	return &BuildOptions{
		Compiler: compiler,
		CFlags:   cflags,
		LinkLibs: linkLibs,
	}
}

func findCompiler() string {
	for _, name := range []string{"cc", "gcc", "clang"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return "cc"
}

// ScratchPath names a fresh file in the system temp directory.
func ScratchPath(ext string) string {
	return filepath.Join(os.TempDir(), "tryzub-"+uuid.NewString()+ext)
}

// BuildExecutable compiles a C translation unit into opts.OutputPath.
func BuildExecutable(ctx context.Context, csrc string, opts *BuildOptions, log *slog.Logger) error {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		return fmt.Errorf("output path must be specified")
	}
	if dir := filepath.Dir(outputPath); !utilsfs.IsDir(dir) {
		return fmt.Errorf("output directory not found: %s", dir)
	}

	cPath := outputPath + ".c"
	if !opts.KeepC {
		cPath = ScratchPath(".c")
		defer os.Remove(cPath)
	}
	if err := os.WriteFile(cPath, []byte(csrc), 0644); err != nil {
		return fmt.Errorf("writing C source: %w", err)
	}

	compiler := opts.Compiler
	if compiler == "" {
		compiler = "cc"
	}

	args := append([]string{}, opts.CFlags...)
	args = append(args, "-o", outputPath, cPath)
	args = append(args, opts.LinkLibs...)

	log.Debug("compiling", slog.String("cc", compiler), slog.Any("args", args))

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, compiler, args...)
	cmd.Env = os.Environ()
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return &ToolchainError{Tool: compiler, Args: args, Output: out.String(), Err: err}
	}

	if !utilsfs.IsValidFile(outputPath) {
		return fmt.Errorf("%s produced no output at %s", compiler, outputPath)
	}
	log.Debug("built", slog.String("output", outputPath))
	return nil
}

// HasCompiler reports whether the configured C compiler can be found.
func HasCompiler(opts *BuildOptions) bool {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	_, err := exec.LookPath(opts.Compiler)
	return err == nil
}
