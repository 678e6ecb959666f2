// Package logging builds the process logger.
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON and text output at a configurable level
//   - Redaction of credentials (GitHub tokens, Telegram bot tokens,
//     passwords embedded in URLs) from messages and attributes
//   - A run identifier carried through the context and attached to every
//     record logged with a *Context method
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "text",
//	    Writer: os.Stderr,
//	})
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRunID(ctx, uuid.NewString())
//	slog.InfoContext(ctx, "sync started", "token", cfg.GitHub.Token) // token=ghp_***
package logging
