// Command relman is the REPL shell over the relation manager: one
// positional argument names the environment directory, then it reads
// statements from stdin until quit or EOF.
//
// Grounded on DaemonDB's top-level main.go REPL loop (bufio.Scanner over
// os.Stdin, "db> " prompt, a line-at-a-time dispatch), trimmed to the
// seven statement kinds exec.Executor understands and the "quit"/"test"
// built-ins spec.md §6 names — the real lexer/parser/bytecode VM the
// teacher's main.go drives stays out of scope per spec.md §1.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/relman/relman/catalog"
	"github.com/relman/relman/dbenv"
	"github.com/relman/relman/exec"
	"github.com/relman/relman/logging"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <environment-directory>\n", os.Args[0])
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: logging.LevelInfo})
	log := logging.Get()

	env, err := dbenv.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "relman: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.Open(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relman: %v\n", err)
		os.Exit(1)
	}
	log.Info("environment ready", "dir", env.Dir)

	executor := exec.New(cat)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("db> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			break
		}
		if strings.EqualFold(line, "test") {
			if err := exec.SelfTest(cat); err != nil {
				fmt.Printf("self-test failed: %v\n", err)
			} else {
				fmt.Println("self-test passed")
			}
			continue
		}

		stmt, err := parseLine(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		result, err := executor.Execute(stmt)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Println(result.String())
	}
}
