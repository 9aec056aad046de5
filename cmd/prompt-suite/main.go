package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/prompt-suite/internal/config"
	"github.com/stellarlinkco/prompt-suite/internal/store"
	"github.com/stellarlinkco/prompt-suite/internal/suite"
)

type cliState struct {
	configPath string
	storePath  string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "prompt-suite",
		Short:         "Manage versioned prompt templates",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")
	root.PersistentFlags().StringVar(&st.storePath, "store", "", "storage path override (.json/.yaml document or .db sqlite file)")

	root.AddCommand(newCreateCmd(st))
	root.AddCommand(newGetCmd(st))
	root.AddCommand(newInfoCmd(st))
	root.AddCommand(newBuildCmd(st))
	root.AddCommand(newListCmd(st))
	root.AddCommand(newAddModelCmd(st))
	root.AddCommand(newUpdateModelCmd(st))
	root.AddCommand(newRemoveModelCmd(st))
	root.AddCommand(newSetDefaultCmd(st))
	root.AddCommand(newRenameCmd(st))
	root.AddCommand(newDeleteCmd(st))
	root.AddCommand(newRestoreCmd(st))
	root.AddCommand(newHistoryCmd(st))
	root.AddCommand(newClearHistoryCmd(st))
	root.AddCommand(newBackupCmd(st))
	root.AddCommand(newSourceCmd(st))
	root.AddCommand(newRunCmd(st))
	return root
}

func (st *cliState) loadConfig() (*config.Config, error) {
	if st.cfg != nil {
		return st.cfg, nil
	}
	cfg, err := config.Load(st.configPath)
	if err != nil {
		return nil, err
	}
	st.cfg = cfg
	return cfg, nil
}

// openSuite opens the configured backend, honoring the --store override.
func (st *cliState) openSuite() (*suite.Suite, error) {
	if path := strings.TrimSpace(st.storePath); path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			return suite.OpenSQLite(path)
		default:
			return suite.OpenFile(path)
		}
	}

	cfg, err := st.loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}
	return suite.New(backend)
}

// parseParams turns repeated key=value flags into render values.
func parseParams(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", pair)
		}
		values[strings.TrimSpace(k)] = v
	}
	return values, nil
}
