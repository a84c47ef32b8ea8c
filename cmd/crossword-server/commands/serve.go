package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crossword-extravaganza/server/internal/lobby"
	"github.com/crossword-extravaganza/server/internal/puzzlefile"
	"github.com/crossword-extravaganza/server/internal/session"
)

const defaultPort = 4949

var (
	servePort int
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve <puzzle-folder>",
	Short: "Load puzzles and accept matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", defaultPort, "listening port")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listening address (default: all interfaces)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("commands: build logger: %w", err)
	}
	defer logger.Sync()

	folder := args[0]
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("commands: %s is not a directory", folder)
	}

	l := lobby.New()
	if err := loadPuzzles(l, folder, logger); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", serveAddr, servePort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("commands: listen on %s: %w", addr, err)
	}
	defer listener.Close()
	logger.Info("crossword server listening", zap.String("addr", listener.Addr().String()))

	return acceptLoop(context.Background(), listener, l, logger)
}

// loadPuzzles loads every *.puzzle file in folder, logging and skipping any
// file that fails to parse rather than aborting startup.
func loadPuzzles(l *lobby.Lobby, folder string, logger *zap.Logger) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return fmt.Errorf("commands: read %s: %w", folder, err)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".puzzle") {
			continue
		}
		path := filepath.Join(folder, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping puzzle file", zap.String("path", path), zap.Error(err))
			continue
		}
		p, err := puzzlefile.Parse(path, content)
		if err != nil {
			logger.Warn("skipping puzzle file", zap.String("path", path), zap.Error(err))
			continue
		}
		l.AddPuzzle(p)
		loaded++
	}
	logger.Info("puzzles loaded", zap.Int("count", loaded))
	return nil
}

func acceptLoop(ctx context.Context, listener net.Listener, l *lobby.Lobby, logger *zap.Logger) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("commands: accept: %w", err)
		}
		s := session.New(conn, l, logger)
		go s.Serve(ctx)
	}
}
