// Package cmd provides the command-line interface of tgairbot.
//
// Each command lives in its own file and registers itself on rootCmd from
// init.
//
// # Available Commands
//
//   - new: scaffold an application from the application schematic
//   - generate: run a schematic of the collection (middleware, layout, ...)
//   - build: compile with tsc or webpack and copy assets
//   - start: build, run the compiled entry file, restart it on rebuilds
//   - info: print CLI and environment details
//
// # Settings
//
// Settings of the CLI itself (log level and format) come from the persistent
// flags and from TGAIRBOT_* environment variables, optionally loaded from a
// .env file in the working directory. The project configuration
// (tgairbot-cli.json) is read by each command through internal/config.
//
// # Command Examples
//
//	// Build once, then keep copying assets
//	tgairbot build --watchAssets
//
//	// Restart the bot after every rebuild, forwarding flags to it
//	tgairbot start --watch -- --token "$BOT_TOKEN"
//
//	// Generate a middleware in the "admin" project
//	tgairbot g mi auth -p admin
package cmd
