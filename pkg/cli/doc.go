/*
Package cli provides command-line helpers for the templatewatch command.

Errors:

ConfigError and CommandError wrap failures reported by commands; ExitCode maps
any error to the process exit status.

Output:

Summaries are printed as colored key-value blocks and tables:

	table := cli.NewTable(os.Stdout, []string{"ID", "Severity"}, noColor)
	table.AddRow("CVE-2024-1234", "critical")
	table.Render()

Signal Handling:

For cancellation on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
