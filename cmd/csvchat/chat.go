package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/csvchat/internal/intent"
)

const maxQueryLine = 64 * 1024

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive query session",
	Long: `Start an interactive query session over the configured dataset.
Type 'exit' to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		interp, err := openInterpreter(context.Background(), cfg)
		if err != nil {
			return err
		}

		banner := colorize(colorBold, "CSV Dataset Chatbot") + "\n" +
			fmt.Sprintf("Ask me questions about the %s dataset. Type 'exit' to quit.", interp.Profile())
		return runREPL(os.Stdin, os.Stdout, interp, banner)
	},
}

type interpreter interface {
	Interpret(text string) intent.Result
}

// runREPL reads one query per line from in until "exit" or EOF and writes
// each rendered answer to out.
func runREPL(in io.Reader, out io.Writer, q interpreter, banner string) error {
	fmt.Fprintln(out, banner)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), maxQueryLine)
	for {
		fmt.Fprint(out, "\nYour query: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			return nil
		}

		fmt.Fprintf(out, "\nResponse:\n%s\n", q.Interpret(line).String())
	}
}
