// Command usc encodes and decodes log streams with the usc codec.
//
// Usage:
//
//	usc encode --mode {stream|hot-lite-full|cold} --in <path> --out <path>
//	usc decode --in <path> --out <path>
//	usc bench --lines N
//
// Exit codes: 0 on success, 1 on malformed input, 2 on unsupported version,
// 3 on I/O error.
//
// USC_WINDOW overrides the default window size; USC_MAX_TEMPLATES overrides
// the template cap.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arloliu/usc/codec"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
)

const (
	exitOK          = 0
	exitMalformed   = 1
	exitUnsupported = 2
	exitIO          = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitMalformed
	}

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:])
	case "decode":
		return cmdDecode(args[1:])
	case "bench":
		return cmdBench(args[1:])
	default:
		usage()
		return exitMalformed
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: usc {encode|decode|bench} [flags]")
}

func envOptions() ([]codec.Option, error) {
	var opts []codec.Option
	if v := os.Getenv("USC_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("USC_WINDOW=%q: %w", v, err)
		}
		opts = append(opts, codec.WithWindowSize(n))
	}
	if v := os.Getenv("USC_MAX_TEMPLATES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("USC_MAX_TEMPLATES=%q: %w", v, err)
		}
		opts = append(opts, codec.WithMaxTemplates(n))
	}

	return opts, nil
}

func parseMode(s string) (format.Mode, error) {
	switch s {
	case "stream":
		return format.ModeStream, nil
	case "hot-lite-full":
		return format.ModeHotLiteFull, nil
	case "cold":
		return format.ModeCold, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := string(data)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}

	return strings.Split(text, "\n"), nil
}

func cmdEncode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	modeFlag := fs.String("mode", "stream", "surface mode: stream, hot-lite-full, or cold")
	inPath := fs.String("in", "", "input path")
	outPath := fs.String("out", "", "output path")
	if err := fs.Parse(args); err != nil {
		return exitMalformed
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "encode: --in and --out are required")
		return exitMalformed
	}

	mode, err := parseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return exitMalformed
	}

	opts, err := envOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return exitMalformed
	}
	opts = append(opts, codec.WithMode(mode))

	lines, err := readLines(*inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return exitIO
	}

	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return exitMalformed
	}
	for _, line := range lines {
		enc.AddLine(line)
	}

	container, stats, err := enc.Finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return exitMalformed
	}

	if err := os.WriteFile(*outPath, container, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return exitIO
	}

	fmt.Printf("encoded %d lines, %d templates, %d packets, %d -> %d bytes (ratio %.4f)\n",
		stats.Lines, stats.Templates, stats.PacketCount, stats.InputBytes, stats.ContainerBytes, stats.Ratio())

	return exitOK
}

func cmdDecode(args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	inPath := fs.String("in", "", "input path")
	outPath := fs.String("out", "", "output path")
	if err := fs.Parse(args); err != nil {
		return exitMalformed
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "decode: --in and --out are required")
		return exitMalformed
	}

	container, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		return exitIO
	}

	lines, err := codec.Decode(container)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		if errors.Is(err, errs.ErrVersionUnsupported) {
			return exitUnsupported
		}

		return exitMalformed
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(*outPath, []byte(b.String()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		return exitIO
	}

	return exitOK
}

func cmdBench(args []string) int {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	lineCount := fs.Int("lines", 10000, "number of synthetic lines")
	if err := fs.Parse(args); err != nil {
		return exitMalformed
	}

	lines := make([]string, *lineCount)
	for i := range lines {
		switch i % 3 {
		case 0:
			lines[i] = fmt.Sprintf("081109 203518 %d INFO dfs.DataNode: Receiving block blk_-%d src: /10.250.%d.%d", i, 1608999687919862906+i, i%250, i%200)
		case 1:
			lines[i] = fmt.Sprintf("2024-01-01 00:%02d:%02d worker=%d state=done items=%d", (i/60)%60, i%60, i%8, i*3)
		default:
			lines[i] = fmt.Sprintf("session 550e8400-e29b-41d4-a716-%012d closed after %d requests", i, i%97)
		}
	}

	modes := []format.Mode{format.ModeStream, format.ModeHotLiteFull, format.ModeCold}
	for _, mode := range modes {
		enc, err := codec.NewEncoder(codec.WithMode(mode))
		if err != nil {
			fmt.Fprintln(os.Stderr, "bench:", err)
			return exitMalformed
		}
		for _, line := range lines {
			enc.AddLine(line)
		}
		container, stats, err := enc.Finish()
		if err != nil {
			fmt.Fprintln(os.Stderr, "bench:", err)
			return exitMalformed
		}

		if _, err := codec.Decode(container); err != nil {
			fmt.Fprintln(os.Stderr, "bench: roundtrip failed:", err)
			return exitMalformed
		}

		fmt.Printf("%-14s %8d lines %9d -> %8d bytes  ratio %.4f  templates %d\n",
			mode, stats.Lines, stats.InputBytes, stats.ContainerBytes, stats.Ratio(), stats.Templates)
	}

	return exitOK
}
