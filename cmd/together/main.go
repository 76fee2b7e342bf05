package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (closing the store and
// the log file) run before the process terminates.
func main() {
	os.Exit(runMain())
}

// runMain executes the command line and maps the outcome to an exit code.
func runMain() int {
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := newCLIApp(os.Stdin, os.Stdout)
	a.setupLogs = true
	defer a.closeLogs()
	defer func() { _ = a.close() }()

	err := newRootCmd(a).ExecuteContext(ctx)
	code := exitCode(err)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if code == config.ExitCodeSysError {
			slog.Error(config.ErrAppFailed,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
	}
	return code
}

// exitCode is 1 for mistakes the user can fix by changing the input and 2 for
// everything else.
func exitCode(err error) int {
	var usage usageError
	switch {
	case err == nil:
		return config.ExitCodeSuccess
	case errors.As(err, &usage),
		errors.Is(err, journal.ErrValidation),
		errors.Is(err, journal.ErrNotFound),
		errors.Is(err, journal.ErrNotOnboarded),
		errors.Is(err, journal.ErrCapsuleLocked),
		errors.Is(err, journal.ErrPhotoTooLarge),
		errors.Is(err, engine.ErrInvalidAnchor):
		return config.ExitCodeUserError
	default:
		return config.ExitCodeSysError
	}
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
		config.Commit,
		config.Date,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(command string) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyName, command,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. Stdout carries command output,
// so logs go to stderr and to a file in the user's cache directory.
func setupLogging(level slog.Level, debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	writers = append(writers, os.Stderr)

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
