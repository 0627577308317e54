package main

import (
	"bytes"
	"embed"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeds the test folder
//
//go:embed test
var testSet embed.FS

// format is as follows:
//
//	# nomtype:cliTest subcommand | arg | arg...
//	expected output
//
// Expected output starting with 'error: ' must be contained in the error the command returns
func extractTestComment(t *testing.T, str string) (args []string, expected string) {
	firstLine, rest, _ := strings.Cut(str, "\n")
	trimmed, ok := strings.CutPrefix(firstLine, "# nomtype:cliTest ")
	if !ok {
		t.Fatalf("could not parse comment string: '%v'", firstLine)
	}
	for _, arg := range strings.Split(trimmed, "|") {
		args = append(args, strings.TrimSpace(arg))
	}
	return args, strings.TrimSpace(rest)
}

// universeFile writes the embedded universe to disk, for the --universe flag
func universeFile(t *testing.T) string {
	content, err := testSet.ReadFile("test/universe.yaml")
	require.NoError(t, err)
	at := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(at, content, 0o644))
	return at
}

func TestCommandsEndToEnd(t *testing.T) {
	universe := universeFile(t)
	files, err := testSet.ReadDir("test/cli")
	require.NoError(t, err)
	assert.NotEmpty(t, files)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}
		t.Run(f.Name(), func(t *testing.T) {
			content, err := testSet.ReadFile(path.Join("test/cli", f.Name()))
			require.NoError(t, err)
			args, expected := extractTestComment(t, string(content))

			// flags keep their values between executions, so every one is set
			flags := []string{"--universe", universe, "--max-steps=10000", "--exhaustive=false", "--debug-errors=false", "--log-level=8"}
			if args[0] == "infer" {
				flags = append(flags, "--dump=false")
			}
			out := bytes.NewBuffer(nil)
			rootCmd.SetOut(out)
			rootCmd.SetErr(io.Discard)
			rootCmd.SetArgs(append(append([]string{args[0]}, flags...), args[1:]...))

			err = rootCmd.Execute()
			if message, ok := strings.CutPrefix(expected, "error: "); ok {
				require.Error(t, err)
				assert.Contains(t, err.Error(), message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, expected, strings.TrimSpace(out.String()))
		})
	}
}

func TestInferDump(t *testing.T) {
	out := bytes.NewBuffer(nil)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"infer", "--universe=", "--max-steps=10000", "--exhaustive=false", "--dump", "List<String>", "ArrayList"})
	require.NoError(t, rootCmd.Execute())

	dump := out.String()
	assert.Contains(t, dump, "Unique:")
	assert.Contains(t, dump, "ArrayList")
	rootCmd.SetArgs([]string{"infer", "--dump=false", "List<String>", "ArrayList"})
	require.NoError(t, rootCmd.Execute())
}
